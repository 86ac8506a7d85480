package accountgateway

// Headers exchanged with the Account Gateway.
const (
	HeaderAAUID                 = "C-AAUID"
	HeaderAccessToken           = "C-Access-Token"
	HeaderAccessor              = "C-Accessor"
	HeaderAccountDomain         = "C-Account-Domain"
	HeaderAccessorLatestVersion = "C-Accessor-Latest-Version"
	HeaderAccountConnection     = "C-Account-Connection"
	HeaderInstallConnection     = "C-Install-Connection"
	HeaderConnectionData        = "C-Connection-Data"
	HeaderDataUpdated           = "C-Data-Updated"
	HeaderCodeForLogger         = "C-Code-For-Logger"
)
