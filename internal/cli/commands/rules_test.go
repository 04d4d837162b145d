package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapuast/internal/cli/config"
)

func TestListRules_GroupFilter(t *testing.T) {
	config.ResetConfig()
	cmd := newTestCommand(t)
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, listRules(cmd, &RulesOptions{Group: "structure", Format: "json"}))

	var doc struct {
		Rules []struct {
			ID    string `json:"id"`
			Group string `json:"group"`
		} `json:"rules"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	require.Equal(t, 2, doc.Count)
	assert.Equal(t, "ST01", doc.Rules[0].ID)
	assert.Equal(t, "ST02", doc.Rules[1].ID)
	for _, r := range doc.Rules {
		assert.Equal(t, "structure", r.Group)
	}
}

func TestListRules_UnknownGroup(t *testing.T) {
	config.ResetConfig()
	cmd := newTestCommand(t)
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, listRules(cmd, &RulesOptions{Group: "nope", Format: "yaml"}))
	assert.Contains(t, out.String(), "count: 0")
	assert.Contains(t, out.String(), "rules: []")
}

func TestShowRule_Text(t *testing.T) {
	config.ResetConfig()
	cmd := newTestCommand(t)
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, showRule(cmd, " rf01 ", &RulesOptions{}))
	assert.Contains(t, out.String(), "RF01 - ")
	assert.Contains(t, out.String(), "Group: references")
	assert.Contains(t, out.String(), "Severity: warning")
}
