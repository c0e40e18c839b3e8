package recording

// Recording is one archived video file.
type Recording struct {
	ID          int64  `json:"id"`
	Filename    string `json:"filename"`
	CameraIP    string `json:"camera_ip"`
	IsCompleted bool   `json:"is_completed"`
}

// StorageInfo is the recorder's disk usage snapshot, in bytes. It is
// fetched on demand and never cached; a cached reading would be stale
// the moment the recorder writes another segment.
type StorageInfo struct {
	UsedSpace  int64 `json:"used_space"`
	FreeSpace  int64 `json:"free_space"`
	TotalSpace int64 `json:"total_space"`
}

// WithCamera pairs a recording with the name of the camera that
// produced it, joined by IP from the device inventory. CameraName is
// empty when the camera has since been removed.
type WithCamera struct {
	Recording
	CameraName string `json:"camera_name"`
}
