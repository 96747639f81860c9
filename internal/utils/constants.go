package utils

const (
	OrganizationName                      = "mbeauty"
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"
	AdminRole                             = "admin"
)
