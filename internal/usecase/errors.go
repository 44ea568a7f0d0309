package usecase

import "errors"

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	ErrForbidden = errors.New("operation not permitted for this role")
	ErrNoSession = errors.New("session not found in context")

	ErrUIDRequired         = errors.New("UID zorunlu. (Sadece sonuna numara girin)")
	ErrInstallDateRequired = errors.New("Montaj tarihi zorunlu.")
	ErrInvalidJobType      = errors.New("geçersiz iş tipi")
	ErrInvalidContract     = errors.New("Lütfen sadece PDF seç.")
	ErrInvalidPhoto        = errors.New("Lütfen sadece fotoğraf seç.")
	ErrNoteRequired        = errors.New("Not boş olamaz.")
	ErrNoContract          = errors.New("Bu kayıt için sözleşme yok.")
	ErrNoPhoto             = errors.New("Bu log için fotoğraf yok.")
	ErrLocationIncomplete  = errors.New("Konum için enlem ve boylam birlikte girilmeli.")
)

// IsValidation reports whether err is an input problem the user can fix,
// as opposed to a store or upstream failure.
func IsValidation(err error) bool {
	for _, v := range []error{
		ErrUIDRequired,
		ErrInstallDateRequired,
		ErrInvalidJobType,
		ErrInvalidContract,
		ErrInvalidPhoto,
		ErrNoteRequired,
		ErrLocationIncomplete,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
