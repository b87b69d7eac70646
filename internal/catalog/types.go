package catalog

// SearchResult is one hit returned by the search endpoint.
type SearchResult struct {
	Title    string `json:"title"`
	ImageRef string `json:"image_src"` // not rendered
	Path     string `json:"path"`      // opaque locator passed to Details
}

// DetailInfo is the descriptive metadata of a catalog item.
type DetailInfo struct {
	Runtime       string   `json:"runtime"`
	DownloadCount string   `json:"downloads"`
	Synopsis      string   `json:"plot"`
	Genres        []string `json:"genres"`
	Cast          []string `json:"cast"`
}

// DownloadItem is a download source offered for a catalog item.
type DownloadItem struct {
	FileName    string `json:"file_name"`
	SeederCount string `json:"counter"`
	DownloadKey string `json:"download_key"`
}

// DetailResponse is the payload of the details endpoint.
type DetailResponse struct {
	Info          DetailInfo     `json:"info"`
	DownloadItems []DownloadItem `json:"download_items"`
}

// FileItem is a file exposed by a download source.
type FileItem struct {
	Name            string `json:"name"`
	FilePath        string `json:"file_path"`
	ConnectionCount string `json:"connections"`
}

// DownloadResponse is the payload of the download endpoint.
type DownloadResponse struct {
	Files []FileItem `json:"files"`
}
