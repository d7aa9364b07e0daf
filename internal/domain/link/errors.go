package link

import "github.com/dealflow/backend/internal/domain/shared"

// Link declaration errors. Every one of them is fatal at boot.
var (
	ErrUnresolvableEntity = shared.NewDomainError("UNRESOLVABLE_ENTITY", "Entity is not exported by any registered module")
	ErrDuplicateLink      = shared.NewDomainError("DUPLICATE_LINK", "Link is declared more than once")
	ErrConflictingLink    = shared.NewDomainError("CONFLICTING_LINK", "Link is declared with conflicting cardinality")
)
