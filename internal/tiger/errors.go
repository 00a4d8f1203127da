package tiger

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors. Every error returned by this package matches one of these
// through errors.Is.
var (
	ErrMissingMember    = errors.New("required member not found in archive")
	ErrAmbiguousMember  = errors.New("too many candidate members in archive")
	ErrExtractionFailed = errors.New("archive extraction failed")
	ErrDecodeFailed     = errors.New("shapefile decode failed")
)

// MissingMemberError reports that no member carries the extension.
type MissingMemberError struct {
	Extension string
}

func (e *MissingMemberError) Error() string {
	return fmt.Sprintf("required .%s file not found in archive", e.Extension)
}

func (e *MissingMemberError) Is(target error) bool { return target == ErrMissingMember }

// AmbiguousMemberError reports that several members carry the extension.
type AmbiguousMemberError struct {
	Extension  string
	Candidates []string
}

func (e *AmbiguousMemberError) Error() string {
	return fmt.Sprintf("too many .%s files in archive: %s", e.Extension, strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousMemberError) Is(target error) bool { return target == ErrAmbiguousMember }

// ExtractionError wraps a failure to open or copy an archive member.
// Member is empty when the archive itself could not be read.
type ExtractionError struct {
	Member string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("error reading zipfile: %v", e.Err)
	}
	return fmt.Sprintf("extract %s: %v", e.Member, e.Err)
}

func (e *ExtractionError) Is(target error) bool { return target == ErrExtractionFailed }
func (e *ExtractionError) Unwrap() error        { return e.Err }

// DecodeError wraps a failure reported while decoding the shapefile.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("error processing shapefile: %v", e.Err)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecodeFailed }
func (e *DecodeError) Unwrap() error        { return e.Err }
