// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package search provides text queries over a collection.
//
// A query is normalized with the same normalizer used at ingestion time,
// embedded, and matched against stored document vectors by cosine
// similarity. Documents whose title contains every query word (ignoring
// common stop words) get a fixed boost, so exact title matches rank above
// near neighbours.
package search
