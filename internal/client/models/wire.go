package models

// EncryptedRequest is the body of every envelope call.
type EncryptedRequest struct {
	EncryptedPayload string `json:"encryptedPayload"`
}

// EncryptedResponse is the body every envelope call answers with.
type EncryptedResponse struct {
	SResponse string `json:"sResponse"`
}

// KeyResponse is the clear-text answer of the key endpoint.
type KeyResponse struct {
	SKey string `json:"sKey"`
	SID  string `json:"sId"`
}

// APIError is one entry of the structured error array.
type APIError struct {
	SMessage string `json:"sMessage"`
}

// Body wraps the payload of a decrypted response.
type Body[T any] struct {
	PayLoad *T `json:"payLoad,omitempty"`
}

// Response is the decrypted structured envelope {oBody:{payLoad}, aError}.
type Response[T any] struct {
	OBody  *Body[T]   `json:"oBody,omitempty"`
	AError []APIError `json:"aError,omitempty"`
}

// Payload returns the payload or nil when the body is absent.
func (r *Response[T]) Payload() *T {
	if r == nil || r.OBody == nil {
		return nil
	}
	return r.OBody.PayLoad
}

// FirstError returns the first reported error message, if any.
func (r *Response[T]) FirstError() (string, bool) {
	if r == nil || len(r.AError) == 0 {
		return "", false
	}
	return r.AError[0].SMessage, true
}

type LoginRequest struct {
	SUserIdentifier string `json:"sUserIdentifier"`
	SSHAPassword    string `json:"sSHAPassword"`
	SProductName    string `json:"sProductName"`
}

type LoginPayload struct {
	SStatus   string `json:"sStatus"`
	SResponse string `json:"sResponse,omitempty"`
	SOtpToken string `json:"sOtpToken"`
	SUsername string `json:"sUsername"`
}

type TwoFactorOTPRequest struct {
	SOtp         string `json:"sOtp"`
	SOtpID       string `json:"sOtpId"`
	SUserName    string `json:"sUserName"`
	SProductName string `json:"sProductName"`
}

// OTPPayload answers both OTP validation endpoints.
type OTPPayload struct {
	SStatus         string `json:"sStatus"`
	SResponse       string `json:"sResponse,omitempty"`
	SToken          string `json:"sToken,omitempty"`
	SEncryptedValue string `json:"sEncryptedValue"`
}

type EmailOTPRequest struct {
	SEmailID     string `json:"sEmailId"`
	SEmailType   string `json:"sEmailType"`
	BOtpRequired bool   `json:"bOtpRequired"`
	SProductName string `json:"sProductName"`
}

type EmailOTPPayload struct {
	BSuccess  bool   `json:"bSuccess"`
	SOtp      string `json:"sOtp"`
	SResponse string `json:"sResponse,omitempty"`
}

type ValidateEmailOTPRequest struct {
	SOtp         string `json:"sOtp"`
	SOtpID       string `json:"sOtpId"`
	SProductName string `json:"sProductName"`
}

type SignupRequest struct {
	SUserName    string `json:"sUserName"`
	SEmail       string `json:"sEmail,omitempty"`
	SPassword    string `json:"sPassword"`
	SFullName    string `json:"sFullName"`
	SProductName string `json:"sProductName"`
}

// StatusPayload answers create-user, change-password and logout.
type StatusPayload struct {
	SStatus          string `json:"sStatus"`
	SResponseMessage string `json:"sResponseMessage,omitempty"`
	ResponseMessage  string `json:"responseMessage,omitempty"`
}

// Message returns whichever message field the backend filled in.
func (p StatusPayload) Message() string {
	if p.SResponseMessage != "" {
		return p.SResponseMessage
	}
	return p.ResponseMessage
}

type ChangePasswordRequest struct {
	SUserIdentifier string `json:"sUserIdentifier"`
	SOldPassword    string `json:"sOldPassword"`
	SNewPassword    string `json:"sNewPassword"`
	SProductName    string `json:"sProductName"`
}

type LogoutRequest struct {
	SUserName    string `json:"sUserName"`
	SProductName string `json:"sProductName"`
}

type DashboardRequest struct {
	SIdentifier  string `json:"sIdentifier"`
	SProductName string `json:"sProductName"`
}

type SaveEntryRequest struct {
	SLongURL   string `json:"sLongUrl"`
	IExpiryDay int    `json:"iExpiryDay"`
	SUser      string `json:"sUser"`
}

type UpdateEntryRequest struct {
	SShortURL  string `json:"sShortUrl"`
	SLongURL   string `json:"sLongUrl"`
	IExpiryDay int    `json:"iExpiryDay"`
	SUser      string `json:"sUser"`
}

type DeleteEntryRequest struct {
	SShortURL string `json:"sShortUrl"`
	SUser     string `json:"sUser"`
}
