package httpx

import "github.com/go-playground/validator/v10"

// FieldErrors converts validator failures into a field→message list for
// ValidationProblem responses. Returns nil when err is nil.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   fe.Field(),
				Message: fe.Tag(),
			})
		}
		return fields
	}
	return []FieldError{{Field: "body", Message: err.Error()}}
}
