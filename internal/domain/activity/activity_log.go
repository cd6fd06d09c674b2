// Package activity records who changed what, for the account's audit trail.
package activity

import (
	"encoding/json"
	"maps"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
)

// Action is what was done to an entity
type Action string

const (
	ActionCreate      Action = "CREATE"
	ActionUpdate      Action = "UPDATE"
	ActionDelete      Action = "DELETE"
	ActionConfirm     Action = "CONFIRM"
	ActionUnconfirm   Action = "UNCONFIRM"
	ActionCancel      Action = "CANCEL"
	ActionReopen      Action = "REOPEN"
	ActionPayment     Action = "PAYMENT"
	ActionLogin       Action = "LOGIN"
	ActionLogout      Action = "LOGOUT"
	ActionStockAdjust Action = "STOCK_ADJUST"
	ActionEnable      Action = "ENABLE"
	ActionDisable     Action = "DISABLE"
	ActionAssign      Action = "ASSIGN"
	ActionUpload      Action = "UPLOAD"
)

// IsValid checks the action
func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionConfirm, ActionUnconfirm,
		ActionCancel, ActionReopen, ActionPayment, ActionLogin, ActionLogout,
		ActionStockAdjust, ActionEnable, ActionDisable, ActionAssign, ActionUpload:
		return true
	}
	return false
}

// Entity types used in activity entries
const (
	EntityAccount  = "Account"
	EntityUser     = "User"
	EntityRole     = "Role"
	EntityProduct  = "Product"
	EntityCustomer = "Customer"
	EntityInvoice  = "Invoice"
	EntityPayment  = "Payment"
	EntityExpense  = "Expense"
	EntityRevenue  = "Revenue"
)

// Values is a JSON object snapshot of an entity's fields
type Values map[string]any

// ActivityLog is one audit trail entry. Entries are immutable.
type ActivityLog struct {
	shared.TenantEntity
	ActorID     *uuid.UUID
	ActorName   string
	Action      Action
	EntityType  string
	EntityID    uuid.UUID
	EntityLabel string
	OldValues   Values
	NewValues   Values
	IPAddress   string
	UserAgent   string
}

// Entry describes a change to be logged
type Entry struct {
	Action      Action
	EntityType  string
	EntityID    uuid.UUID
	EntityLabel string
	Before      any
	After       any
}

// NewActivityLog builds an entry for the actor. For updates only the fields that
// differ between Before and After are kept; other actions keep full snapshots.
func NewActivityLog(tenantID uuid.UUID, actor shared.Actor, e Entry) (*ActivityLog, error) {
	if !e.Action.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACTION", "Unknown activity action")
	}
	if strings.TrimSpace(e.EntityType) == "" {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Entity type is required")
	}

	before, err := Snapshot(e.Before)
	if err != nil {
		return nil, err
	}
	after, err := Snapshot(e.After)
	if err != nil {
		return nil, err
	}
	if e.Action == ActionUpdate {
		before, after = Diff(before, after)
	}

	log := &ActivityLog{
		TenantEntity: shared.NewTenantEntity(tenantID),
		ActorName:    actor.Name,
		Action:       e.Action,
		EntityType:   e.EntityType,
		EntityID:     e.EntityID,
		EntityLabel:  e.EntityLabel,
		OldValues:    before,
		NewValues:    after,
		IPAddress:    actor.IPAddress,
		UserAgent:    truncate(actor.UserAgent, 500),
	}
	if actor.UserID != uuid.Nil {
		id := actor.UserID
		log.ActorID = &id
	}
	return log, nil
}

// Snapshot converts v into a JSON object. Nil yields nil; Values are copied.
func Snapshot(v any) (Values, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case Values:
		return maps.Clone(val), nil
	case map[string]any:
		return maps.Clone(val), nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out Values
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, shared.NewDomainError("INVALID_SNAPSHOT", "Activity snapshot must be a JSON object")
	}
	return out, nil
}

// Diff keeps only the keys whose values differ between old and new
func Diff(oldValues, newValues Values) (Values, Values) {
	changedOld := Values{}
	changedNew := Values{}
	for k, nv := range newValues {
		ov, ok := oldValues[k]
		if !ok || !reflect.DeepEqual(ov, nv) {
			if ok {
				changedOld[k] = ov
			} else {
				changedOld[k] = nil
			}
			changedNew[k] = nv
		}
	}
	for k, ov := range oldValues {
		if _, ok := newValues[k]; !ok {
			changedOld[k] = ov
			changedNew[k] = nil
		}
	}
	return changedOld, changedNew
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
