// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package dronedef

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("minimal fleet", func(t *testing.T) {
		t.Parallel()

		fleet, err := Parse([]byte(`{
  "drones": [
    {"name": "scout"}
  ]
}`))
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if len(fleet.Drones) != 1 {
			t.Fatalf("Drones count = %d, want 1", len(fleet.Drones))
		}
		if fleet.Drones[0].Name != "scout" {
			t.Errorf("Drones[0].Name = %q, want %q", fleet.Drones[0].Name, "scout")
		}
	})

	t.Run("full fleet", func(t *testing.T) {
		t.Parallel()

		fleet, err := Parse([]byte(`{
  "name": "review-squad",
  "defaults": {
    "agent": "sonnet",
    "chat": "main"
  },
  "drones": [
    {
      "name": "reviewer-1",
      "initial_prompt": "Review the open pull requests."
    },
    {
      "name": "reviewer-2",
      "agent": "opus",
      "chat": "deep-review"
    }
  ]
}`))
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if fleet.Name != "review-squad" {
			t.Errorf("Name = %q, want %q", fleet.Name, "review-squad")
		}
		if fleet.Defaults.Agent != "sonnet" {
			t.Errorf("Defaults.Agent = %q, want %q", fleet.Defaults.Agent, "sonnet")
		}
		if len(fleet.Drones) != 2 {
			t.Fatalf("Drones count = %d, want 2", len(fleet.Drones))
		}
		if fleet.Drones[0].InitialPrompt != "Review the open pull requests." {
			t.Errorf("Drones[0].InitialPrompt = %q", fleet.Drones[0].InitialPrompt)
		}
		if fleet.Drones[1].Agent != "opus" {
			t.Errorf("Drones[1].Agent = %q, want %q", fleet.Drones[1].Agent, "opus")
		}
		if fleet.Drones[1].Chat != "deep-review" {
			t.Errorf("Drones[1].Chat = %q, want %q", fleet.Drones[1].Chat, "deep-review")
		}
	})

	t.Run("JSONC with comments and trailing commas", func(t *testing.T) {
		t.Parallel()

		fleet, err := Parse([]byte(`{
  // Nightly CI babysitters
  "name": "ci-watch",
  "drones": [
    {
      "name": "ci-main",
      /* The initial prompt runs once the drone
         reaches the ready phase */
      "initial_prompt": "Watch the main branch build.",
    },
  ]
}`))
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if fleet.Name != "ci-watch" {
			t.Errorf("Name = %q, want %q", fleet.Name, "ci-watch")
		}
		if fleet.Drones[0].InitialPrompt != "Watch the main branch build." {
			t.Errorf("Drones[0].InitialPrompt = %q", fleet.Drones[0].InitialPrompt)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		t.Parallel()

		_, err := Parse([]byte("{not json"))
		if err == nil {
			t.Fatal("expected error for invalid JSON")
		}
	})

	t.Run("empty object", func(t *testing.T) {
		t.Parallel()

		fleet, err := Parse([]byte("{}"))
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if len(fleet.Drones) != 0 {
			t.Errorf("Drones count = %d, want 0", len(fleet.Drones))
		}
	})
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	t.Run("valid JSONC file", func(t *testing.T) {
		t.Parallel()

		directory := t.TempDir()
		path := filepath.Join(directory, "review-squad.jsonc")
		err := os.WriteFile(path, []byte(`{
  // Explicit name overrides the file name
  "name": "reviewers",
  "drones": [
    {"name": "reviewer-1"},
  ]
}`), 0o644)
		if err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		fleet, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if fleet.Name != "reviewers" {
			t.Errorf("Name = %q, want %q", fleet.Name, "reviewers")
		}
	})

	t.Run("name falls back to file name", func(t *testing.T) {
		t.Parallel()

		directory := t.TempDir()
		path := filepath.Join(directory, "night-shift.jsonc")
		err := os.WriteFile(path, []byte(`{
  "drones": [
    {"name": "watcher"}
  ]
}`), 0o644)
		if err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		fleet, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if fleet.Name != "night-shift" {
			t.Errorf("Name = %q, want %q", fleet.Name, "night-shift")
		}
	})

	t.Run("nonexistent file", func(t *testing.T) {
		t.Parallel()

		_, err := ReadFile("/nonexistent/fleet.jsonc")
		if err == nil {
			t.Fatal("expected error for nonexistent file")
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		t.Parallel()

		directory := t.TempDir()
		path := filepath.Join(directory, "bad.jsonc")
		if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		_, err := ReadFile(path)
		if err == nil {
			t.Fatal("expected error for malformed JSON")
		}
	})
}

func TestNameFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"fleets/review-squad.jsonc", "review-squad"},
		{"review-squad.json", "review-squad"},
		{"/absolute/path/to/night-shift.jsonc", "night-shift"},
		{"no-extension", "no-extension"},
		{"multiple.dots.in.name.jsonc", "multiple.dots.in.name"},
	}

	for _, testCase := range tests {
		t.Run(testCase.path, func(t *testing.T) {
			t.Parallel()

			got := NameFromPath(testCase.path)
			if got != testCase.want {
				t.Errorf("NameFromPath(%q) = %q, want %q", testCase.path, got, testCase.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		fleet          *Fleet
		expectedIssues int
		wantSubstrings []string
	}{
		{
			name: "valid single drone",
			fleet: &Fleet{
				Drones: []Drone{
					{Name: "scout"},
				},
			},
			expectedIssues: 0,
		},
		{
			name: "valid fleet with defaults and overrides",
			fleet: &Fleet{
				Name:     "review-squad",
				Defaults: Defaults{Agent: "sonnet", Chat: "main"},
				Drones: []Drone{
					{Name: "reviewer-1", InitialPrompt: "Review PRs."},
					{Name: "reviewer-2", Agent: "opus"},
					{Name: "ci.nightly_bot-7"},
				},
			},
			expectedIssues: 0,
		},
		{
			name:           "no drones",
			fleet:          &Fleet{Name: "empty"},
			expectedIssues: 1,
			wantSubstrings: []string{"no drones"},
		},
		{
			name: "drone missing name",
			fleet: &Fleet{
				Drones: []Drone{
					{InitialPrompt: "orphan prompt"},
				},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"drones[0]", "name is required"},
		},
		{
			name: "invalid name",
			fleet: &Fleet{
				Drones: []Drone{
					{Name: "-leading-hyphen"},
				},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"invalid name"},
		},
		{
			name: "name too long",
			fleet: &Fleet{
				Drones: []Drone{
					{Name: strings.Repeat("a", 80)},
				},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"invalid name"},
		},
		{
			name: "duplicate names",
			fleet: &Fleet{
				Drones: []Drone{
					{Name: "scout"},
					{Name: "ranger"},
					{Name: "scout"},
				},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"drones[2]", "duplicate name", "drones[0]"},
		},
		{
			name: "multiple issues",
			fleet: &Fleet{
				Drones: []Drone{
					{},                     // missing name
					{Name: "has space"},    // invalid name
					{Name: "scout"},        // fine
					{Name: "scout"},        // duplicate
					{Name: ".leading-dot"}, // invalid name
				},
			},
			expectedIssues: 4,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			issues := Validate(testCase.fleet)
			if len(issues) != testCase.expectedIssues {
				t.Fatalf("got %d issues, want %d:\n%s", len(issues), testCase.expectedIssues, strings.Join(issues, "\n"))
			}

			for _, substring := range testCase.wantSubstrings {
				found := false
				for _, issue := range issues {
					if strings.Contains(issue, substring) {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("expected issue containing %q, got:\n%s", substring, strings.Join(issues, "\n"))
				}
			}
		})
	}
}

func TestSpecs(t *testing.T) {
	t.Parallel()

	fleet := &Fleet{
		Name:     "review-squad",
		Defaults: Defaults{Agent: "sonnet", Chat: "main"},
		Drones: []Drone{
			{Name: "reviewer-1", InitialPrompt: "Review PRs."},
			{Name: "reviewer-2", Agent: "opus", Chat: "deep-review"},
			{Name: "reviewer-3", Chat: "triage"},
		},
	}

	specs := fleet.Specs()
	if len(specs) != 3 {
		t.Fatalf("Specs count = %d, want 3", len(specs))
	}

	// Entry without overrides inherits both defaults.
	if specs[0].Agent != "sonnet" {
		t.Errorf("specs[0].Agent = %q, want %q", specs[0].Agent, "sonnet")
	}
	if specs[0].Chat != "main" {
		t.Errorf("specs[0].Chat = %q, want %q", specs[0].Chat, "main")
	}
	if specs[0].InitialPrompt != "Review PRs." {
		t.Errorf("specs[0].InitialPrompt = %q", specs[0].InitialPrompt)
	}

	// Per-drone overrides win over defaults.
	if specs[1].Agent != "opus" {
		t.Errorf("specs[1].Agent = %q, want %q", specs[1].Agent, "opus")
	}
	if specs[1].Chat != "deep-review" {
		t.Errorf("specs[1].Chat = %q, want %q", specs[1].Chat, "deep-review")
	}

	// Partial override: chat set, agent inherited.
	if specs[2].Agent != "sonnet" {
		t.Errorf("specs[2].Agent = %q, want %q", specs[2].Agent, "sonnet")
	}
	if specs[2].Chat != "triage" {
		t.Errorf("specs[2].Chat = %q, want %q", specs[2].Chat, "triage")
	}
}

func TestSpecsEmptyFleet(t *testing.T) {
	t.Parallel()

	fleet := &Fleet{Name: "empty"}
	specs := fleet.Specs()
	if len(specs) != 0 {
		t.Errorf("Specs count = %d, want 0", len(specs))
	}
}
