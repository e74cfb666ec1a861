// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"spacos/internal/models"
)

var (
	cikRegex    = regexp.MustCompile(`^[0-9]{1,10}$`)
	tickerRegex = regexp.MustCompile(`^[A-Z]{1,5}([.-](U|UN|WS|W|R))?$`)
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn installs the custom rules on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("spac_status", vocabulary(models.SPACStatus.Valid))
	_ = v.RegisterValidation("spac_phase", vocabulary(models.SPACPhase.Valid))
	_ = v.RegisterValidation("deal_stage", vocabulary(models.DealStage.Valid))
	_ = v.RegisterValidation("document_status", vocabulary(models.DocumentStatus.Valid))
	_ = v.RegisterValidation("document_type", vocabulary(models.DocumentType.Valid))
	_ = v.RegisterValidation("task_status", vocabulary(models.TaskStatus.Valid))
	_ = v.RegisterValidation("task_priority", vocabulary(models.TaskPriority.Valid))
	_ = v.RegisterValidation("filing_status", vocabulary(models.FilingStatus.Valid))
	_ = v.RegisterValidation("investor_type", vocabulary(models.InvestorType.Valid))
	_ = v.RegisterValidation("subscription_status", vocabulary(models.SubscriptionStatus.Valid))
	_ = v.RegisterValidation("share_class", vocabulary(models.ShareClassKind.Valid))
	_ = v.RegisterValidation("holder_type", vocabulary(models.HolderType.Valid))
	_ = v.RegisterValidation("trust_transaction_type", vocabulary(models.TrustTransactionType.Valid))
	_ = v.RegisterValidation("role", vocabulary(models.Role.Valid))
	_ = v.RegisterValidation("billing_plan", vocabulary(models.BillingPlan.Valid))
	_ = v.RegisterValidation("billing_status", vocabulary(models.BillingStatus.Valid))
	_ = v.RegisterValidation("cik", validateCIK)
	_ = v.RegisterValidation("ticker", validateTicker)
}

// vocabulary adapts a closed-vocabulary Valid method to a field validator.
func vocabulary[T ~string](valid func(T) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return valid(T(fl.Field().String()))
	}
}

func validateCIK(fl validator.FieldLevel) bool {
	return cikRegex.MatchString(fl.Field().String())
}

func validateTicker(fl validator.FieldLevel) bool {
	return tickerRegex.MatchString(fl.Field().String())
}
