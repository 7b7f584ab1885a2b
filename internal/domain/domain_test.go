package domain

import "testing"

func TestValidSlug(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"reduce-time", true},
		{"step1", true},
		{"a-b-c", true},
		{"", false},
		{"Reduce-Time", false},
		{"reduce--time", false},
		{"-reduce", false},
		{"reduce time", false},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			if got := ValidSlug(tt.slug); got != tt.want {
				t.Errorf("ValidSlug(%q) = %v, want %v", tt.slug, got, tt.want)
			}
		})
	}
}

func TestStatusAndRoleValid(t *testing.T) {
	if !StatusActive.Valid() || !StatusArchived.Valid() {
		t.Error("expected known statuses to be valid")
	}
	if Status("deleted").Valid() {
		t.Error("unexpected valid status")
	}
	for _, r := range []Role{RoleReader, RoleWriter, RoleAdmin} {
		if !r.Valid() {
			t.Errorf("role %q should be valid", r)
		}
	}
	if Role("owner").Valid() {
		t.Error("unexpected valid role")
	}
}

func TestHierarchyOutcomeCount(t *testing.T) {
	h := Hierarchy{BigJobs: []BigJob{
		{LittleJobs: []LittleJob{{Outcomes: make([]Outcome, 2)}, {Outcomes: make([]Outcome, 1)}}},
		{LittleJobs: []LittleJob{{}}},
	}}
	if got := h.OutcomeCount(); got != 3 {
		t.Errorf("OutcomeCount() = %d, want 3", got)
	}
}
