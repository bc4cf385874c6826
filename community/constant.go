package community

const (
	CommunityBase = "https://steamcommunity.com"
	APIBase       = "https://api.steampowered.com"

	// Version string the official Android client reports; the mobileconf
	// endpoints reject sessions without it.
	ClientVersion = "0 (2.1.3)"

	OAuthClientID = "DE45CD61"
	OAuthScope    = "read_profile write_profile read_client write_client"

	MobileUserAgent = "Mozilla/5.0 (Linux; U; Android 4.1.1; en-us; Google Nexus 4 - 4.1.1 - API 16 - 768x1280 Build/JRO03S) AppleWebKit/534.30 (KHTML, like Gecko) Version/4.0 Mobile Safari/534.30"
)

// Endpoint paths, relative to CommunityBase or APIBase.
const (
	PathRSAKey        = "/login/getrsakey"
	PathDoLogin       = "/login/dologin"
	PathRenderCaptcha = "/login/rendercaptcha/"
	PathPhoneAjax     = "/steamguard/phoneajax"
	PathMobileConf    = "/mobileconf"

	PathGetWGToken            = "/IMobileAuthService/GetWGToken/v0001"
	PathQueryTime             = "/ITwoFactorService/QueryTime/v0001"
	PathAddAuthenticator      = "/ITwoFactorService/AddAuthenticator/v0001"
	PathFinalizeAuthenticator = "/ITwoFactorService/FinalizeAddAuthenticator/v0001"
	PathRemoveAuthenticator   = "/ITwoFactorService/RemoveAuthenticator/v0001"
	PathCreateEmergencyCodes  = "/ITwoFactorService/CreateEmergencyCodes/v0001"
	PathDestroyEmergencyCodes = "/ITwoFactorService/DestroyEmergencyCodes/v0001"
)

// MobileLoginReferer marks requests as coming from the official mobile app.
const MobileLoginReferer = CommunityBase + "/mobilelogin?oauth_client_id=" + OAuthClientID +
	"&oauth_scope=read_profile%20write_profile%20read_client%20write_client"

const (
	CookieMobileClientVersion = "mobileClientVersion"
	CookieMobileClient        = "mobileClient"
	CookieSteamID             = "steamid"
	CookieSteamLogin          = "steamLogin"
	CookieSteamLoginSecure    = "steamLoginSecure"
	CookieLanguage            = "Steam_Language"
	CookieSessionID           = "sessionid"
)
