package internship

import (
	"strings"

	"jobmate/review-service/internal/model"
)

// ContainsRedFlag returns true if any red flag term appears (case-insensitive)
// anywhere in the offer's name, company or description.
//
// Called before every upsert; a flagged offer is silently discarded.
func ContainsRedFlag(i model.Internship, redFlags []string) bool {
	if len(redFlags) == 0 {
		return false
	}
	combined := strings.ToLower(i.Name + " " + i.Company + " " + i.Description)
	for _, flag := range redFlags {
		flag = strings.TrimSpace(flag)
		if flag == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(flag)) {
			return true
		}
	}
	return false
}
