package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_Ask(t *testing.T) {
	var out bytes.Buffer
	p := &prompter{in: bufioReader("  products.csv  \nproducts"), out: &out, interactive: true}

	value, err := p.ask("Enter your data directory: ", "data")
	require.NoError(t, err)
	assert.Equal(t, "products.csv", value)
	assert.Equal(t, "Enter your data directory: ", out.String())

	// Last line without a trailing newline
	value, err = p.ask("Enter the collection name: ", "collection")
	require.NoError(t, err)
	assert.Equal(t, "products", value)
}

func TestPrompter_AskEmpty(t *testing.T) {
	p := &prompter{in: bufioReader("\n"), out: &bytes.Buffer{}, interactive: true}
	_, err := p.ask("Enter the collection name: ", "collection")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection is required")
}

func TestPrompter_AskEOF(t *testing.T) {
	p := &prompter{in: bufioReader(""), out: &bytes.Buffer{}, interactive: true}
	_, err := p.ask("Enter the collection name: ", "collection")
	assert.Error(t, err)
}

func TestPrompter_NotInteractive(t *testing.T) {
	p := newPrompter(strings.NewReader("ignored\n"), &bytes.Buffer{})
	_, err := p.ask("Enter the batch size: ", "batch size")
	assert.ErrorIs(t, err, errNotInteractive)
	assert.Contains(t, err.Error(), "batch size is required")
}

func TestPrompter_AskInt(t *testing.T) {
	p := &prompter{in: bufioReader("25\nmany\n"), out: &bytes.Buffer{}, interactive: true}

	n, err := p.askInt("Enter the batch size: ", "batch size")
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	_, err = p.askInt("Enter the batch size: ", "batch size")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be an integer")
}

func bufioReader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}
