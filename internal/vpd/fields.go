package vpd

// fieldLabels maps the two-character VPD keywords to human readable
// labels. The set follows the PCI expansion-ROM VPD keywords plus the IBM
// extensions found on pSeries machines. Keys not listed here are vendor
// specific and only shown on request.
var fieldLabels = map[string]string{
	"PN": "Part Number",
	"FN": "FRU Number",
	"EC": "EC Level",
	"MN": "Manufacture ID",
	"SN": "Serial Number",
	"LI": "Load ID",
	"RL": "ROM Level",
	"RM": "Alterable ROM Level",
	"NA": "Network Address",
	"DD": "Device Driver Level",
	"DG": "Diagnostic Level",
	"LL": "Loadable Microcode Level",
	"VI": "Vendor ID/Device ID",
	"FU": "Function Number",
	"SI": "Subsystem Vendor ID/Device ID",
	"VK": "Platform",
	"TM": "Machine Type/Model",
	"YL": "Location Code",
	"BR": "Brand",
	"CI": "CCIN",
	"RD": "Rack Data",
	"DS": "Description",
}

// Label returns the human readable label for a keyword, if it has one.
func Label(key string) (string, bool) {
	label, ok := fieldLabels[key]
	return label, ok
}
