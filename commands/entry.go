package commands

import (
	"fmt"

	"github.com/mobile-next/autotype/database"
)

// SetPasswordRequest represents the parameters for storing an entry password
type SetPasswordRequest struct {
	Entry    string `json:"entry"`
	Password string `json:"password"`
}

// SetPasswordCommand stores an entry's password in the system keyring. The
// entry must defer to the keyring ("password = keyring") to use it.
func (s *Service) SetPasswordCommand(req SetPasswordRequest) *CommandResponse {
	entry, err := s.findEntry(req.Entry)
	if err != nil {
		return NewErrorResponse(err)
	}

	if req.Password == "" {
		return NewErrorResponse(fmt.Errorf("password is required"))
	}

	if err := database.SetPassword(entry.Path(), req.Password); err != nil {
		return NewErrorResponse(fmt.Errorf("failed to store password for %s: %w", entry.Path(), err))
	}

	message := fmt.Sprintf("Stored password for %s", entry.Path())
	if !entry.PasswordInKeyring() {
		message += fmt.Sprintf(" (set \"password = %s\" in the database to use it)", database.KeyringMarker)
	}

	return NewSuccessResponse(map[string]string{
		"message": message,
	})
}

// DeletePasswordRequest represents the parameters for removing a stored password
type DeletePasswordRequest struct {
	Entry string `json:"entry"`
}

// DeletePasswordCommand removes an entry's password from the system keyring.
func (s *Service) DeletePasswordCommand(req DeletePasswordRequest) *CommandResponse {
	entry, err := s.findEntry(req.Entry)
	if err != nil {
		return NewErrorResponse(err)
	}

	if err := database.DeletePassword(entry.Path()); err != nil {
		return NewErrorResponse(fmt.Errorf("failed to delete password for %s: %w", entry.Path(), err))
	}

	return NewSuccessResponse(map[string]string{
		"message": fmt.Sprintf("Deleted password for %s", entry.Path()),
	})
}
