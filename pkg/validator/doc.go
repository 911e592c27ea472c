// Package validator builds declarative input checks. Each rule function
// returns a Rule; Apply evaluates a list of them and returns
// ValidationErrors, reporting the first failure of each field.
//
//	err := validator.Apply(validator.Join(
//		[]validator.Rule{
//			validator.Required("name", req.Name),
//			validator.LenBetween("name", req.Name, 2, 100),
//			validator.NotEmpty("email", req.Emails),
//		},
//		validator.When(req.Website != "", validator.ValidURL("website", req.Website)),
//	)...)
//
// The handler package renders ValidationErrors as a 400 response with one
// {field, message} entry per failure.
package validator
