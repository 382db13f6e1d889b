package shortcode

import "time"

// MaxLength bounds codes accepted on redemption. Issued codes are 32
// random bytes in base64, well under this cap.
const MaxLength = 128

// Usage partitions codes so a code issued for one workflow can never be
// redeemed against another.
type Usage string

const (
	UsageRegister      Usage = "register"
	UsageUpdateEmail   Usage = "updateEmail"
	UsageResetPassword Usage = "resetPassword"
)

func (u Usage) String() string { return string(u) }

func (u Usage) Validate() error {
	switch u {
	case UsageRegister, UsageUpdateEmail, UsageResetPassword:
		return nil
	}

	return ErrInvalidUsage()
}

// ShortCode describes a pending code. The plain code only exists in the
// Create return value, storage keeps a hash. Data is an optional payload
// handed back on redemption, such as the new address of an email update.
type ShortCode struct {
	Usage     Usage
	Target    string
	Data      string
	ExpiresAt time.Time
}
