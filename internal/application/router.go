package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kurzickkrozz/GWPB/internal/domain"
)

type Op string

const (
	OpCreate   Op = "create"
	OpClaim    Op = "claim"
	OpVacate   Op = "vacate"
	OpSwitch   Op = "switch"
	OpExternal Op = "external"
	OpKick     Op = "kick"
	OpPromote  Op = "promote"
	OpDisband  Op = "disband"
	OpPing     Op = "ping"
	OpAttach   Op = "attach"
)

var (
	ErrUnknownOp  = errors.New("unknown operation")
	errOpPanicked = errors.New("operation panicked")
)

// Action is one resolved inbound platform event.
type Action struct {
	Op             Op
	PartyID        domain.PartyID
	ActorID        domain.MemberID
	Kind           domain.Kind
	SlotIndex      int
	DisplayName    string
	TargetMemberID domain.MemberID
	Ref            domain.PresentationRef
}

type Result struct {
	Party  domain.Party
	Pinged []domain.MemberID
	Notice string
}

// Router maps actions onto lifecycle operations.
type Router struct {
	manager *Manager
	logger  *slog.Logger
}

func NewRouter(manager *Manager, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Router{manager: manager, logger: logger}
}

// Dispatch runs action. Errors that are not lifecycle errors are logged
// here; UserMessage turns any returned error into a reply.
func (r *Router) Dispatch(ctx context.Context, action Action) (result Result, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%w: %v", errOpPanicked, recovered)
		}
		if err != nil && !IsLifecycleError(err) {
			r.logger.Error("dispatch action", "op", action.Op, "party_id", action.PartyID, "actor", action.ActorID, "error", err)
		}
	}()

	var party domain.Party
	switch action.Op {
	case OpCreate:
		party, err = r.manager.Create(ctx, action.Kind, action.ActorID)
	case OpClaim:
		party, err = r.manager.Claim(ctx, action.PartyID, action.ActorID, action.SlotIndex)
	case OpVacate:
		party, action.SlotIndex, err = r.manager.Vacate(ctx, action.PartyID, action.ActorID)
	case OpSwitch:
		party, err = r.manager.SwitchRole(ctx, action.PartyID, action.ActorID, action.SlotIndex)
	case OpExternal:
		party, err = r.manager.AddExternal(ctx, action.PartyID, action.ActorID, action.SlotIndex, action.DisplayName)
	case OpKick:
		party, err = r.manager.Kick(ctx, action.PartyID, action.ActorID, action.SlotIndex)
	case OpPromote:
		party, err = r.manager.Promote(ctx, action.PartyID, action.ActorID, action.TargetMemberID)
	case OpDisband:
		party, err = r.manager.Disband(ctx, action.PartyID, action.ActorID)
	case OpAttach:
		party, err = r.manager.AttachPresentation(ctx, action.PartyID, action.Ref)
	case OpPing:
		var pinged []domain.MemberID
		pinged, err = r.manager.Ping(ctx, action.PartyID, action.ActorID)
		if err != nil {
			return Result{}, err
		}
		return Result{Pinged: pinged, Notice: pingNotice(pinged)}, nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownOp, action.Op)
	}
	if err != nil {
		return Result{}, err
	}

	return Result{Party: party, Notice: successNotice(action, party)}, nil
}
