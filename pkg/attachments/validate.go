package attachments

import "fmt"

// Validate checks one candidate against limits given the files already
// staged. Checks run in a fixed order: type, file size, total size, count,
// then duplicate name.
func Validate(c Candidate, staged []File, limits Limits) error {
	limits = limits.normalized()
	name := normalizeName(c.Name)

	if !limits.Accepts(resolveType(c)) {
		return &RejectionError{Name: name, Reason: "File type not allowed", Err: ErrTypeNotAllowed}
	}
	if c.Size > limits.MaxFileSize {
		return &RejectionError{
			Name:   name,
			Reason: fmt.Sprintf("File size exceeds %s limit", HumanSize(limits.MaxFileSize)),
			Err:    ErrFileTooLarge,
		}
	}
	var total int64
	for _, file := range staged {
		total += file.Size
	}
	if total+c.Size > limits.MaxTotalSize {
		return &RejectionError{
			Name:   name,
			Reason: fmt.Sprintf("Total size would exceed %s limit", HumanSize(limits.MaxTotalSize)),
			Err:    ErrTotalTooLarge,
		}
	}
	if len(staged)+1 > limits.MaxFiles {
		return &RejectionError{
			Name:   name,
			Reason: fmt.Sprintf("Maximum %d files allowed", limits.MaxFiles),
			Err:    ErrTooManyFiles,
		}
	}
	for _, file := range staged {
		if file.Name == name {
			return &RejectionError{Name: name, Reason: "File already added", Err: ErrDuplicateName}
		}
	}
	return nil
}
