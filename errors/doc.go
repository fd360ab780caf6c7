/*
Package errors provides semantic error types for the docstore repositories.

Absence is not an error: FindOne and friends return a nil document and a nil
error when nothing matches. The types here cover the failures a caller may
want to branch on. Anything else coming from the driver is returned unchanged.

Common Errors:

	var (
	    ErrNotFound        = errors.New("document not found")
	    ErrAlreadyExists   = errors.New("document already exists")
	    ErrInvalidInput    = errors.New("invalid input")
	    ErrConditionFailed = errors.New("condition check failed")
	    ErrInvalidPipeline = errors.New("invalid pipeline")
	    ErrUnknownModel    = errors.New("unknown model")
	)

Usage:

	country, err := repo.Create(ctx, payload, nil)
	if err != nil {
	    switch {
	    case errors.IsValidationError(err):
	        // payload rejected before reaching the store
	    case errors.IsAlreadyExists(err):
	        // unique index collision, the driver error is still wrapped
	    }
	    return err
	}

DuplicateKeyError unwraps to the driver's write exception so that
mongo.IsDuplicateKeyError keeps working on it.
*/
package errors
