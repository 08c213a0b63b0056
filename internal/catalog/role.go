// Package catalog holds the fixed taxonomy of target roles, cloud
// preferences and data-engineering skills an interview draws from.
package catalog

import "fmt"

// Role is a target role, ranked from junior to principal.
type Role string

const (
	RoleJunior    Role = "junior_data_engineer"
	RoleMid       Role = "mid_data_engineer"
	RoleSenior    Role = "senior_data_engineer"
	RoleStaff     Role = "staff_data_engineer"
	RolePrincipal Role = "principal_data_engineer"
)

// RoleInfo is the display metadata attached to a Role.
type RoleInfo struct {
	Role            Role
	DisplayName     string
	ExperienceRange string
	// MinYears and MaxYears bound the expected experience for readiness
	// checks. Principal is open ended and uses 30.
	MinYears       int
	MaxYears       int
	BaseDifficulty int
	FocusAreas     []string
}

var roleTable = map[Role]RoleInfo{
	RoleJunior: {
		Role: RoleJunior, DisplayName: "Junior Data Engineer", ExperienceRange: "0-2 years",
		MinYears: 0, MaxYears: 2, BaseDifficulty: 3,
		FocusAreas: []string{
			"SQL fundamentals",
			"ETL basics",
			"Relational databases",
			"Git, Linux basics",
			"Cloud fundamentals",
			"Conceptual understanding",
		},
	},
	RoleMid: {
		Role: RoleMid, DisplayName: "Mid-Level Data Engineer", ExperienceRange: "2-5 years",
		MinYears: 2, MaxYears: 5, BaseDifficulty: 5,
		FocusAreas: []string{
			"Advanced SQL",
			"ETL pipeline design",
			"Spark fundamentals",
			"Cloud-native services",
			"Workflow orchestration",
			"Data quality & testing",
		},
	},
	RoleSenior: {
		Role: RoleSenior, DisplayName: "Senior Data Engineer", ExperienceRange: "5-8 years",
		MinYears: 5, MaxYears: 8, BaseDifficulty: 7,
		FocusAreas: []string{
			"Data platform design",
			"Performance tuning",
			"Distributed systems",
			"Streaming design",
			"Cloud cost optimization",
			"Observability and resiliency",
		},
	},
	RoleStaff: {
		Role: RoleStaff, DisplayName: "Staff Data Engineer", ExperienceRange: "8-12 years",
		MinYears: 8, MaxYears: 12, BaseDifficulty: 8,
		FocusAreas: []string{
			"Platform ownership",
			"Cross-domain architecture",
			"Governance & security",
			"Multi-cloud strategy",
			"Organizational impact",
			"Long-term roadmap decisions",
		},
	},
	RolePrincipal: {
		Role: RolePrincipal, DisplayName: "Principal Data Engineer", ExperienceRange: "12+ years",
		MinYears: 12, MaxYears: 30, BaseDifficulty: 9,
		FocusAreas: []string{
			"Enterprise architecture",
			"Technology vision",
			"Industry influence",
			"Organization-wide impact",
			"Strategic partnerships",
			"Innovation leadership",
		},
	},
}

// AllRoles returns every role in rank order.
func AllRoles() []Role {
	return []Role{RoleJunior, RoleMid, RoleSenior, RoleStaff, RolePrincipal}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleTable[r]
	return ok
}

// Info returns the metadata for r. Unknown roles get a zero RoleInfo with
// the mid-level base difficulty.
func (r Role) Info() RoleInfo {
	if info, ok := roleTable[r]; ok {
		return info
	}
	return RoleInfo{Role: r, DisplayName: string(r), ExperienceRange: "Unknown", BaseDifficulty: defaultDifficulty}
}

// DisplayName returns the human-readable role name.
func (r Role) DisplayName() string { return r.Info().DisplayName }

const defaultDifficulty = 5

// BaseDifficulty returns the starting difficulty for a role.
func BaseDifficulty(r Role) int {
	return r.Info().BaseDifficulty
}

// FocusAreas returns the focus areas for a role.
func FocusAreas(r Role) []string {
	areas := r.Info().FocusAreas
	out := make([]string, len(areas))
	copy(out, areas)
	return out
}

// ParseRole converts a string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}

// CloudPreference is the cloud platform a candidate prefers to be asked about.
type CloudPreference string

const (
	CloudAWS      CloudPreference = "aws"
	CloudGCP      CloudPreference = "gcp"
	CloudAzure    CloudPreference = "azure"
	CloudMulti    CloudPreference = "multi_cloud"
	CloudAgnostic CloudPreference = "cloud_agnostic"
)

var cloudNames = map[CloudPreference]string{
	CloudAWS:      "Amazon Web Services",
	CloudGCP:      "Google Cloud Platform",
	CloudAzure:    "Microsoft Azure",
	CloudMulti:    "Multi-Cloud",
	CloudAgnostic: "Cloud Agnostic",
}

// AllClouds returns every cloud preference in display order.
func AllClouds() []CloudPreference {
	return []CloudPreference{CloudAWS, CloudGCP, CloudAzure, CloudMulti, CloudAgnostic}
}

// Valid reports whether c is a known cloud preference.
func (c CloudPreference) Valid() bool {
	_, ok := cloudNames[c]
	return ok
}

// DisplayName returns the human-readable cloud name.
func (c CloudPreference) DisplayName() string {
	if n, ok := cloudNames[c]; ok {
		return n
	}
	return string(c)
}

// IsProvider reports whether c names a single concrete provider.
func (c CloudPreference) IsProvider() bool {
	return c == CloudAWS || c == CloudGCP || c == CloudAzure
}
