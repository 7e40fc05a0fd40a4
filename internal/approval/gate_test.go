package approval

import (
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		req     Request
		want    []string
	}{
		{
			name:    "everything blocks",
			enabled: false,
			req:     Request{Approved: false, DryRun: true},
			want:    []string{ReasonWritesDisabled, ReasonNotApproved, ReasonDryRun},
		},
		{
			name:    "all conditions met",
			enabled: true,
			req:     Request{Approved: true, DryRun: false},
			want:    []string{},
		},
		{
			name:    "writes disabled",
			enabled: false,
			req:     Request{Approved: true, DryRun: false},
			want:    []string{ReasonWritesDisabled},
		},
		{
			name:    "not approved",
			enabled: true,
			req:     Request{Approved: false, DryRun: false},
			want:    []string{ReasonNotApproved},
		},
		{
			name:    "dry run",
			enabled: true,
			req:     Request{Approved: true, DryRun: true},
			want:    []string{ReasonDryRun},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.req, tt.enabled)
			assert.Equal(t, tt.want, d.BlockingReasons)
			assert.Equal(t, len(tt.want) == 0, d.CanExecute)
		})
	}
}

func TestEvaluate_EchoesRequest(t *testing.T) {
	req := Request{
		Action:        "disable_service_principal",
		TargetID:      "11111111-2222-3333-4444-555555555555",
		Justification: "compromised secret reported by SOC",
		Approved:      true,
	}

	d := Evaluate(req, true)

	assert.Equal(t, req.Action, d.Action)
	assert.Equal(t, req.TargetID, d.TargetID)
	assert.Equal(t, req.Justification, d.Justification)
	assert.True(t, d.WriteActionsEnabled)
	assert.True(t, d.CanExecute)
}

func TestDecision_JSON(t *testing.T) {
	d := Evaluate(Request{Action: "a", TargetID: "t", DryRun: true}, false)

	data, err := json.Marshal(d)
	assert.NoError(t, err)
	assert.JSONEq(t, `{
		"action": "a",
		"targetId": "t",
		"approved": false,
		"dryRun": true,
		"allowWriteActions": false,
		"justification": "",
		"canExecute": false,
		"reasons": ["ALLOW_WRITE_ACTIONS is false", "approved is not true", "dryRun is true"]
	}`, string(data))
}

func TestEvaluate_Properties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("reason count equals the number of failing conditions", prop.ForAll(
		func(enabled, approved, dryRun bool) bool {
			want := 0
			if !enabled {
				want++
			}
			if !approved {
				want++
			}
			if dryRun {
				want++
			}
			d := Evaluate(Request{Approved: approved, DryRun: dryRun}, enabled)
			return len(d.BlockingReasons) == want && d.CanExecute == (want == 0)
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
