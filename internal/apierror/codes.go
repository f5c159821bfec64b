package apierror

// Problem type URIs, used as the "type" member of every problem response
const (
	TypeValidation         = "urn:todotofu:error:validation"          // 400
	TypeInvalidDate        = "urn:todotofu:error:invalid_date"        // 400
	TypeBadRequest         = "urn:todotofu:error:bad_request"         // 400
	TypeUnauthorized       = "urn:todotofu:error:unauthorized"        // 401
	TypeInvalidCredentials = "urn:todotofu:error:invalid_credentials" // 401
	TypeForbidden          = "urn:todotofu:error:forbidden"           // 403
	TypeNotFound           = "urn:todotofu:error:not_found"           // 404
	TypeConflict           = "urn:todotofu:error:conflict"            // 409
	TypeRateLimit          = "urn:todotofu:error:rate_limit"          // 429
	TypeCanceled           = "urn:todotofu:error:canceled"            // 499
	TypeInternal           = "urn:todotofu:error:internal"            // 500
	TypeUnavailable        = "urn:todotofu:error:unavailable"         // 503
	TypeTimeout            = "urn:todotofu:error:timeout"             // 504
)

const (
	TitleValidation         = "Validation Error"
	TitleInvalidDate        = "Invalid Date"
	TitleBadRequest         = "Bad Request"
	TitleUnauthorized       = "Authentication Required"
	TitleInvalidCredentials = "Invalid Credentials"
	TitleForbidden          = "Permission Denied"
	TitleNotFound           = "Resource Not Found"
	TitleConflict           = "Resource Conflict"
	TitleRateLimit          = "Rate Limit Exceeded"
	TitleInternal           = "Internal Server Error"
	TitleCanceled           = "Request Canceled"
	TitleUnavailable        = "Service Unavailable"
	TitleTimeout            = "Request Timeout"
)

// StatusClientClosedRequest is the non-standard status recorded when the
// client goes away before the response is written
const StatusClientClosedRequest = 499
