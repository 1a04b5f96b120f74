package assets

// Type classifies the visual content of a resolved asset.
type Type string

const (
	TypeImage       Type = "image"
	TypeVideo       Type = "video"
	TypePlaceholder Type = "placeholder"
)

// Origin records which cascade tier produced an asset.
type Origin string

const (
	OriginProvider      Origin = "provider"
	OriginSynthetic     Origin = "synthetic"
	OriginFallbackStock Origin = "fallback-stock"
)

// Asset is the resolved visual for one scene. Path points at a local file
// inside the run's scratch directory; the file exists and is non-empty before
// the asset is handed to downstream stages.
type Asset struct {
	SceneID  string `json:"sceneId"`
	Type     Type   `json:"type"`
	Path     string `json:"path"`
	Origin   Origin `json:"origin"`
	Title    string `json:"title,omitempty"`
	Source   string `json:"source,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	ByteSize int64  `json:"byteSize"`
}
