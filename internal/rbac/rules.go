package rbac

const (
	RoleLearner = "learner"
	RoleAuthor  = "author"
	RoleAdmin   = "admin"
)

const (
	PermQueueView     = "queue:view"
	PermContentView   = "content:view"
	PermContentCreate = "content:create"
	PermContentUpdate = "content:update"
	PermExamTake      = "exam:take"
)

// RolePermissions is the default policy.
var RolePermissions = map[string][]string{
	RoleLearner: {
		PermQueueView,
		PermContentView,
		PermExamTake,
	},
	RoleAuthor: {
		PermContentView,
		"content:*",
	},
	RoleAdmin: {
		"*", // everything
	},
}
