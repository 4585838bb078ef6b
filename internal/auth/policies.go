package auth

import (
	"fmt"
	"go-success-stories/internal/logger"

	"github.com/casbin/casbin/v2"
)

// EditorRole is the role allowed to publish and feature stories.
const EditorRole = "editor"

// DefaultPolicies grant the public site to anonymous users and the
// editor pages to editors.
var DefaultPolicies = [][]string{
	{"anonymous", "/success-stories/", "GET"},
	{"anonymous", "/success-stories/*", "GET"},
	{"anonymous", "/success-stories/submit/", "POST"},
	{"anonymous", "/box/*", "GET"},
	{"anonymous", "/robots.txt", "GET"},
	{"anonymous", "/sitemap.xml", "GET"},

	{EditorRole, "/editor/*", "GET"},
	{EditorRole, "/editor/*", "POST"},
}

// SeedDefaultPolicies ensures that the application has a baseline set of authorization rules.
// It checks if each default policy exists before adding it, making the operation idempotent
// and safe to run on every application start. Every subject in editors is granted the editor role.
func SeedDefaultPolicies(e casbin.IEnforcer, editors []string, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	for _, p := range DefaultPolicies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	for _, subject := range editors {
		if has, _ := e.HasRoleForUser(subject, EditorRole); !has {
			if _, err := e.AddRoleForUser(subject, EditorRole); err != nil {
				log.Error(err, fmt.Sprintf("Failed to grant editor role to %q", subject))
			}
		}
	}
	log.Info("Policy seeding complete.")
}
