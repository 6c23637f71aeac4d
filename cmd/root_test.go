package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommandWiring(t *testing.T) {
	assert.Equal(t, "rentmap", rootCmd.Use)

	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"process", "convert-zcta", "serve", "runs", "init"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestProcessFlags(t *testing.T) {
	for _, flag := range []string{"geojson", "zori", "out-geojson", "out-timeseries", "state", "zip-prefixes", "min-year"} {
		assert.NotNil(t, processCmd.Flags().Lookup(flag), "missing flag %s", flag)
	}
}
