package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePluginArg(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		spec     string
		wantID   string
		wantFile string
	}{
		{name: "id only", spec: "fraud-scorer", wantID: "fraud-scorer", wantFile: ""},
		{name: "id with file", spec: "fraud-scorer=fraud.yaml", wantID: "fraud-scorer", wantFile: "fraud.yaml"},
		{name: "empty file", spec: "p=", wantID: "p", wantFile: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, file := parsePluginArg(tt.spec)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantFile, file)
		})
	}
}
