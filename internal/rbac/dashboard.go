package rbac

const (
	// LoginPath is where signed-out visitors are sent
	LoginPath = "/login"

	// GenericDashboardPath resolves to the landing page of the current user
	GenericDashboardPath = "/dashboard"

	// FallbackDashboardPath is the participant tier, used when no listed role matches
	FallbackDashboardPath = "/participant"
)

var dashboardPaths = map[Role]string{
	RoleAdmin:          "/admin",
	RoleOrganizer:      "/organizer",
	RolePanelEvaluator: "/evaluator",
	RoleAuthor:         "/author",
	RoleParticipant:    FallbackDashboardPath,
}

// DashboardPath picks the landing page for the highest-priority role held.
// The input order does not matter; an empty or unmatched set yields the fallback.
func DashboardPath(roles []Role) string {
	for _, p := range priority {
		for _, r := range roles {
			if r == p {
				return dashboardPaths[p]
			}
		}
	}
	return FallbackDashboardPath
}

// DashboardFor returns the landing page owned by a single role
func DashboardFor(role Role) (string, bool) {
	path, ok := dashboardPaths[role]
	return path, ok
}
