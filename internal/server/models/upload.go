package models

// UploadBundle holds the staged local files that accompany a registration.
// Avatar is required, CoverImage optional (empty when absent).
type UploadBundle struct {
	Avatar     string
	CoverImage string
}

func (b UploadBundle) HasAvatar() bool { return b.Avatar != "" }

func (b UploadBundle) HasCoverImage() bool { return b.CoverImage != "" }
