package rbac

// Default policy. Caregivers complete the interview and read their own
// reports; clinicians review every attempt; admins manage everything.
var RolePermissions = map[string][]string{
	"caregiver": {
		"quiz:view",
		"attempt:create",
		"attempt:save",
		"attempt:submit",
		"attempt:view-own",
		"report:view-own",
		"user:change_password",
	},
	"clinician": {
		"quiz:view",
		"attempt:view-all",
		"report:view-all",
		"analytics:view",
		"users:list",
	},
	"admin": {
		"*", // everything
	},
}
