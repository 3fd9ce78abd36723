package api

// PartitionInfo is one row of the partition directory listing.
type PartitionInfo struct {
	Index      int    `json:"index"`
	Signature  uint8  `json:"signature"`
	Checksum   uint8  `json:"checksum"`
	ChecksumOK bool   `json:"checksum_ok"`
	Blocks     int    `json:"blocks"`
	Bytes      int    `json:"bytes"`
	Offset     int64  `json:"offset"`
	Name       string `json:"name"`
}

// PartitionList is the /v1/partitions response.
type PartitionList struct {
	ReportID   string          `json:"report_id"`
	Store      string          `json:"store"`
	Partitions []PartitionInfo `json:"partitions"`
	Warnings   []string        `json:"warnings,omitempty"`
}

// ConfigRecord is one name=value pair of a config partition.
type ConfigRecord struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ConfigSection groups the records of one partition.
type ConfigSection struct {
	Partition string         `json:"partition"`
	Records   []ConfigRecord `json:"records"`
}

// ConfigResponse is the /v1/config response.
type ConfigResponse struct {
	ReportID string          `json:"report_id"`
	Sections []ConfigSection `json:"sections,omitempty"`
	Values   []string        `json:"values,omitempty"`
}

// VPDField is one decoded vital product data field.
type VPDField struct {
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
	Value string `json:"value"`
}

// VPDSection is one identification string and its fields.
type VPDSection struct {
	Ident  string     `json:"ident"`
	Fields []VPDField `json:"fields"`
}

// VPDResponse is the /v1/vpd response.
type VPDResponse struct {
	ReportID string       `json:"report_id"`
	Sections []VPDSection `json:"sections"`
}

// ResponseError is the error payload shape shared by all endpoints.
type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
