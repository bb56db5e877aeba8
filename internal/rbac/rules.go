package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"lesson:view",
		"session:start",
		"session:answer",
		"session:complete",
		"progress:view-own",
		"notifications:view-own",
		"user:change_password",
	},
	"author": {
		"lesson:view",
		"lesson:create",
		"progress:view-all",
		"users:bulk_upsert",
		"users:list",
	},
	"admin": {
		"*", // everything
	},
}
