package partners

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

const maxAvatarBytes = 5 << 20

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Avatar is an image upload. Data is base64 on the wire.
type Avatar struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// validate checks the declared type against the sniffed one and returns the
// object extension.
func (a Avatar) validate() (string, error) {
	if len(a.Data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "avatar is empty")
	}
	if len(a.Data) > maxAvatarBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "avatar exceeds 5MB")
	}
	declared := strings.ToLower(strings.TrimSpace(a.ContentType))
	ext, ok := avatarExtensions[declared]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "avatar must be jpeg, png or webp").
			WithDetails(map[string]string{"content_type": a.ContentType})
	}
	if sniffed := http.DetectContentType(a.Data); sniffed != declared {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "avatar content does not match its content type").
			WithDetails(map[string]string{"declared": declared, "detected": sniffed})
	}
	return ext, nil
}

func avatarObject(partnerID uuid.UUID, ext string) string {
	return fmt.Sprintf("partners/%s/avatar-%s%s", partnerID, uuid.NewString()[:8], ext)
}
