package validator

import (
	"errors"
	"slices"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"local-library/internal/models"
)

// Rules for the catalog records. The page forms and the importer both run
// these, so a record is accepted the same way whichever path writes it.
var (
	AuthorRules = Pipeline{
		Sanitize("first_name", "First name must be specified.",
			Alphanumeric("First name has non-alphanumeric characters."),
			MaxLength(models.AuthorNameMaxLength, "First name is too long.")),
		Sanitize("family_name", "Family name must be specified.",
			Alphanumeric("Family name has non-alphanumeric characters."),
			MaxLength(models.AuthorNameMaxLength, "Family name is too long.")),
		OptionalDate("date_of_birth", "Invalid date of birth"),
		OptionalDate("date_of_death", "Invalid date of death"),
	}

	GenreRules = Pipeline{
		Sanitize("name", "Genre name required"),
	}

	BookRules = Pipeline{
		Sanitize("title", "Title must not be empty."),
		Sanitize("author", "Author must not be empty.", Reference("Author must be an existing author.")),
		Sanitize("summary", "Summary must not be empty."),
		Sanitize("isbn", "ISBN must not be empty."),
		List("genre", Trim(), Escape(), ObjectID("Genre is invalid.")),
	}

	BookInstanceRules = Pipeline{
		Sanitize("book", "Book must be specified.", Reference("Book must be an existing book.")),
		Sanitize("imprint", "Imprint must be specified."),
		Text("status", Trim(), Default(string(models.DefaultCopyStatus)),
			CopyStatus("Status must be one of Available, Maintenance, Loaned or Reserved.")),
		OptionalDate("due_back", "Invalid date"),
	}
)

// Reference is ObjectID for a required reference field: an empty value is
// left to NotEmpty so it is reported once.
func Reference(message string) Step {
	check := ObjectID(message)
	return func(v string) (string, error) {
		if v == "" {
			return v, nil
		}
		return check(v)
	}
}

// CopyStatus accepts only the known book copy statuses.
func CopyStatus(message string) Step {
	return func(v string) (string, error) {
		if !models.IsValidCopyStatus(v) {
			return v, errors.New(message)
		}
		return v, nil
	}
}

// ObjectIDs parses every element of a sanitized list field, dropping
// duplicates and anything that is not an id.
func (r Result) ObjectIDs(name string) []primitive.ObjectID {
	out := []primitive.ObjectID{}
	for _, raw := range r.List(name) {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			continue
		}
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// ObjectIDOf parses a sanitized scalar reference, NilObjectID when malformed.
func (r Result) ObjectIDOf(name string) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(r.Get(name))
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}
