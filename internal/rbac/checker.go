package rbac

import (
	"slices"
	"strings"
)

// Checker answers whether a role (student, admin) holds a permission such
// as "quiz:submit". Grants may end in "*" to cover a whole resource
// ("questions:*"); a bare "*" covers everything.
type Checker struct {
	RolePermissions map[string][]string
}

// NewChecker uses RolePermissions when rp is nil.
func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	return &Checker{RolePermissions: rp}
}

func (c *Checker) Has(role, perm string) bool {
	return slices.ContainsFunc(c.RolePermissions[role], func(grant string) bool {
		return matchPerm(grant, perm)
	})
}

func matchPerm(grant, perm string) bool {
	prefix, wildcard := strings.CutSuffix(grant, "*")
	if !wildcard {
		return grant == perm
	}
	return strings.HasPrefix(perm, prefix)
}
