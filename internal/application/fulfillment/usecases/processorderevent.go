package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/quillstore/quill/internal/application/fulfillment/dto"
	"github.com/quillstore/quill/internal/domain/account"
	"github.com/quillstore/quill/internal/domain/entitlement"
	"github.com/quillstore/quill/internal/domain/product"
	apperrors "github.com/quillstore/quill/internal/shared/errors"
	"github.com/quillstore/quill/internal/shared/logger"
)

// GrantNotifier pushes entitlement changes to connected buyers.
// Delivery is best-effort; failures never affect fulfillment.
type GrantNotifier interface {
	NotifyGranted(ctx context.Context, accountSID, entitlementSID, productSID, orderRef string)
	NotifyRefunded(ctx context.Context, accountSID, entitlementSID, productSID string)
	NotifyRestored(ctx context.Context, accountSID, entitlementSID, productSID string)
}

// GrantInfo identifies one entitlement touched by an order event.
type GrantInfo struct {
	EntitlementSID string
	AccountSID     string
	ProductSID     string
}

// ResolutionFailure records one product or buyer reference the event
// carried that could not be resolved. Failures do not abort the batch.
type ResolutionFailure struct {
	Kind   string // "product", "variant", "buyer"
	Ref    string
	Reason string
}

// ProcessResult summarizes what an order event did.
type ProcessResult struct {
	EventName    string
	OrderRef     string
	Granted      []GrantInfo
	AlreadyOwned []GrantInfo
	Refunded     []GrantInfo
	Failures     []ResolutionFailure
}

// ProcessOrderEventUseCase turns verified provider webhook payloads into
// entitlement grants. The caller must have verified the payload
// signature before handing over the raw bytes.
type ProcessOrderEventUseCase struct {
	accountRepo     account.Repository
	productRepo     product.Repository
	entitlementRepo entitlement.Repository
	notifier        GrantNotifier // Optional
	logger          logger.Interface
}

func NewProcessOrderEventUseCase(
	accountRepo account.Repository,
	productRepo product.Repository,
	entitlementRepo entitlement.Repository,
	logger logger.Interface,
) *ProcessOrderEventUseCase {
	return &ProcessOrderEventUseCase{
		accountRepo:     accountRepo,
		productRepo:     productRepo,
		entitlementRepo: entitlementRepo,
		logger:          logger,
	}
}

// SetNotifier sets the grant notifier (optional dependency injection)
func (uc *ProcessOrderEventUseCase) SetNotifier(notifier GrantNotifier) {
	uc.notifier = notifier
}

func (uc *ProcessOrderEventUseCase) Execute(ctx context.Context, raw []byte) (*ProcessResult, error) {
	var event dto.OrderEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		uc.logger.Warnw("malformed webhook payload", "error", err)
		return nil, apperrors.NewValidationError("malformed webhook payload", err.Error())
	}

	if event.Meta.EventName == "" {
		return nil, apperrors.NewValidationError("malformed webhook payload", "missing meta.event_name")
	}

	result := &ProcessResult{
		EventName: event.Meta.EventName,
		OrderRef:  event.Data.ID,
	}

	switch event.Meta.EventName {
	case dto.EventOrderCreated:
		if err := uc.processOrderCreated(ctx, &event, result); err != nil {
			return nil, err
		}
	case dto.EventOrderRefunded:
		if err := uc.processOrderRefunded(ctx, &event, result); err != nil {
			return nil, err
		}
	default:
		// Recognized envelope, uninteresting event. Ack so the provider
		// stops redelivering.
		uc.logger.Debugw("ignoring webhook event", "event_name", event.Meta.EventName)
		return result, nil
	}

	uc.logger.Infow("order event processed",
		"event_name", result.EventName,
		"order_ref", result.OrderRef,
		"granted", len(result.Granted),
		"already_owned", len(result.AlreadyOwned),
		"refunded", len(result.Refunded),
		"failures", len(result.Failures),
	)

	return result, nil
}

func (uc *ProcessOrderEventUseCase) processOrderCreated(ctx context.Context, event *dto.OrderEvent, result *ProcessResult) error {
	buyer, resolvedVia, err := uc.resolveBuyer(ctx, event)
	if err != nil {
		return err
	}
	if buyer == nil {
		// No account to grant to. Loud log, but ack: the provider
		// retrying will not make an account appear.
		uc.logger.Errorw("order event has no resolvable buyer",
			"order_ref", event.Data.ID,
			"user_id", event.Meta.CustomData.UserID,
		)
		result.Failures = append(result.Failures, ResolutionFailure{
			Kind:   "buyer",
			Ref:    event.Meta.CustomData.UserID,
			Reason: "no matching account",
		})
		return nil
	}

	products, err := uc.resolveProducts(ctx, event, result)
	if err != nil {
		return err
	}

	for _, p := range products {
		grant, err := entitlement.NewGrant(buyer.ID(), p.ID(), event.Data.ID, entitlement.SourceLemonSqueezy)
		if err != nil {
			return fmt.Errorf("failed to build grant: %w", err)
		}
		if resolvedVia == "email" {
			grant.SetMetadata("resolved_via", "email")
		}

		created, err := uc.entitlementRepo.Upsert(ctx, grant)
		if err != nil {
			uc.logger.Errorw("failed to persist grant",
				"order_ref", event.Data.ID,
				"account_sid", buyer.SID(),
				"product_sid", p.SID(),
				"error", err,
			)
			return apperrors.NewInternalError("failed to persist entitlement grant")
		}

		info := GrantInfo{
			EntitlementSID: grant.SID(),
			AccountSID:     buyer.SID(),
			ProductSID:     p.SID(),
		}

		if !created {
			result.AlreadyOwned = append(result.AlreadyOwned, info)
			continue
		}

		result.Granted = append(result.Granted, info)

		if uc.notifier != nil {
			uc.notifier.NotifyGranted(ctx, buyer.SID(), grant.SID(), p.SID(), event.Data.ID)
		}
	}

	return nil
}

func (uc *ProcessOrderEventUseCase) processOrderRefunded(ctx context.Context, event *dto.OrderEvent, result *ProcessResult) error {
	if event.Data.ID == "" {
		return apperrors.NewValidationError("malformed webhook payload", "refund event missing data.id")
	}

	grants, err := uc.entitlementRepo.ListByOrderRef(ctx, event.Data.ID)
	if err != nil {
		uc.logger.Errorw("failed to load grants for refund", "order_ref", event.Data.ID, "error", err)
		return apperrors.NewInternalError("failed to load entitlements for refund")
	}

	if len(grants) == 0 {
		uc.logger.Warnw("refund event matched no grants", "order_ref", event.Data.ID)
		return nil
	}

	for _, grant := range grants {
		if err := grant.Refund(); err != nil {
			return fmt.Errorf("failed to refund grant %s: %w", grant.SID(), err)
		}

		if err := uc.entitlementRepo.Update(ctx, grant); err != nil {
			uc.logger.Errorw("failed to persist refund",
				"entitlement_sid", grant.SID(),
				"order_ref", event.Data.ID,
				"error", err,
			)
			return apperrors.NewInternalError("failed to persist refund")
		}

		info := GrantInfo{EntitlementSID: grant.SID()}
		if buyer, err := uc.accountRepo.GetByID(ctx, grant.AccountID()); err == nil {
			info.AccountSID = buyer.SID()
			if p, err := uc.productRepo.GetByID(ctx, grant.ProductID()); err == nil {
				info.ProductSID = p.SID()
			}
			if uc.notifier != nil {
				uc.notifier.NotifyRefunded(ctx, info.AccountSID, grant.SID(), info.ProductSID)
			}
		}
		result.Refunded = append(result.Refunded, info)
	}

	return nil
}

// resolveBuyer resolves the event to an account: the checkout custom
// user_id (account SID) wins; an account matching the provider-reported
// email is the fallback. The fallback trusts the provider's email
// field, so it is logged at Warn and flagged in grant metadata.
func (uc *ProcessOrderEventUseCase) resolveBuyer(ctx context.Context, event *dto.OrderEvent) (*account.Account, string, error) {
	if sid := event.Meta.CustomData.UserID; sid != "" {
		buyer, err := uc.accountRepo.GetBySID(ctx, sid)
		if err == nil {
			return buyer, "user_id", nil
		}
		if !errors.Is(err, account.ErrNotFound) {
			return nil, "", apperrors.NewInternalError("failed to look up buyer account")
		}
		uc.logger.Warnw("order custom user_id matched no account, trying email fallback",
			"user_id", sid,
			"order_ref", event.Data.ID,
		)
	}

	email := event.Data.Attributes.UserEmail
	if email == "" {
		return nil, "", nil
	}

	buyer, err := uc.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, "", nil
		}
		return nil, "", apperrors.NewInternalError("failed to look up buyer account")
	}

	uc.logger.Warnw("buyer resolved by provider email fallback",
		"account_sid", buyer.SID(),
		"order_ref", event.Data.ID,
	)
	return buyer, "email", nil
}

// resolveProducts resolves the event's product references. Explicit
// product SIDs from checkout custom data win; otherwise provider
// variant IDs from the order items are mapped through the catalog.
// Unresolvable references are recorded and skipped.
func (uc *ProcessOrderEventUseCase) resolveProducts(ctx context.Context, event *dto.OrderEvent, result *ProcessResult) ([]*product.Product, error) {
	var products []*product.Product

	if sids := event.Meta.CustomData.ProductSIDs(); len(sids) > 0 {
		for _, sid := range sids {
			p, err := uc.productRepo.GetBySID(ctx, sid)
			if err != nil {
				if errors.Is(err, product.ErrNotFound) {
					uc.logger.Errorw("order references unknown product",
						"product_sid", sid,
						"order_ref", event.Data.ID,
					)
					result.Failures = append(result.Failures, ResolutionFailure{
						Kind:   "product",
						Ref:    sid,
						Reason: "unknown product",
					})
					continue
				}
				return nil, apperrors.NewInternalError("failed to look up product")
			}
			products = append(products, p)
		}
		return products, nil
	}

	for _, variantID := range event.Data.Attributes.VariantIDs() {
		ref := strconv.FormatInt(variantID, 10)
		p, err := uc.productRepo.GetByProviderVariantID(ctx, ref)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				uc.logger.Errorw("order references unmapped provider variant",
					"variant_id", ref,
					"order_ref", event.Data.ID,
				)
				result.Failures = append(result.Failures, ResolutionFailure{
					Kind:   "variant",
					Ref:    ref,
					Reason: "no product mapped to variant",
				})
				continue
			}
			return nil, apperrors.NewInternalError("failed to look up product")
		}
		products = append(products, p)
	}

	return products, nil
}
