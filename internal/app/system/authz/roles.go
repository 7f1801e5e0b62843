// internal/app/system/authz/roles.go
package authz

import (
	"strings"

	"github.com/dalemusser/docuhub/internal/domain/models"
)

// RoleCanWrite reports whether role may create, edit, move or delete
// documents. Viewers may read and keep their own favorites.
func RoleCanWrite(role string) bool {
	return models.WorkspaceMember{Role: strings.ToLower(strings.TrimSpace(role))}.CanWrite()
}
