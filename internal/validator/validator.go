package validator

// Validator bundles the validation facilities handed to services
type Validator struct {
	business *BusinessValidator
}

func NewValidator() *Validator {
	return &Validator{business: NewBusinessValidator()}
}

func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

// Validate runs plain struct validation without extra business rules
func (v *Validator) Validate(s interface{}) ValidationErrors {
	return v.business.Validate(s)
}
