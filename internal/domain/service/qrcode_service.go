package service

// QRCodeService renders URLs as QR code images.
type QRCodeService interface {
	// GenerateURLQR returns a PNG QR code encoding the given URL.
	GenerateURLQR(url string) ([]byte, error)
}
