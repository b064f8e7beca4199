package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinishDoctor(t *testing.T) {
	out := finishDoctor(&DoctorOutput{Checks: []HealthCheck{
		{Group: "database", Name: "connection", Status: StatusFail},
		{Group: "configuration", Name: "config file", Status: StatusWarn},
		{Group: "database", Name: "tables", Status: StatusSkip},
		{Group: "configuration", Name: "target", Status: StatusPass},
	}})

	names := make([]string, len(out.Checks))
	for i, c := range out.Checks {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"config file", "target", "connection", "tables"}, names)
	assert.Equal(t, 1, out.Failures)
}

func TestRenderDoctorText(t *testing.T) {
	tests := []struct {
		name    string
		out     *DoctorOutput
		want    []string
		notWant []string
	}{
		{
			name: "all passing",
			out: finishDoctor(&DoctorOutput{Checks: []HealthCheck{
				{Group: "configuration", Name: "target", Status: StatusPass, Detail: "sqlite3, mode truncate"},
				{Group: "database", Name: "connection", Status: StatusPass, Detail: "ping ok"},
			}}),
			want:    []string{"Configuration", "Database", "sqlite3, mode truncate", "All checks passed"},
			notWant: []string{"FAIL"},
		},
		{
			name: "failure and skip",
			out: finishDoctor(&DoctorOutput{Checks: []HealthCheck{
				{Group: "database", Name: "connection", Status: StatusFail, Detail: "failed to ping"},
				{Group: "database", Name: "tables", Status: StatusSkip},
			}}),
			want:    []string{"FAIL", "failed to ping", "1 failing checks"},
			notWant: []string{"All checks passed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			renderDoctorText(buf, tt.out)
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "unsupported dialect", firstLine("unsupported dialect\nHint: x"))
	assert.Equal(t, "single", firstLine("single"))
	assert.Empty(t, firstLine(""))
}

func TestNewDoctorCommand(t *testing.T) {
	cmd := NewDoctorCommand()
	assert.Equal(t, "doctor", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Example)
}
