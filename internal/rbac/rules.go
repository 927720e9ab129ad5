package rbac

const (
	PermQuestionsGenerate = "questions:generate"
	PermQuestionsViewOwn  = "questions:view-own"
	PermQuizSubmit        = "quiz:submit"
	PermQuizViewOwn       = "quiz:view-own"
	PermUsageView         = "usage:view"
	PermChangePassword    = "user:change_password"
	PermUsersList         = "users:list"
)

// Default policy. Admins get everything.
var RolePermissions = map[string][]string{
	"student": {
		"questions:*",
		PermQuizSubmit,
		PermQuizViewOwn,
		PermUsageView,
		PermChangePassword,
	},
	"admin": {
		"*",
	},
}
