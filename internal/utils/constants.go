package utils

import (
    "regexp"
)

const (
    OrganizationName                      = "Surepeps"
    CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"

    BuyerAccountType  = "buyer"
    SellerAccountType = "seller"

    TestPhoneNumberBase   = "+999"
    TestEmailSuffix       = "testing@surepeps.com"
    TestEmailRegexPattern = `^[0-9]+` + TestEmailSuffix + `$`
)

// Pre-compile the test email regex.
var TestEmailRegex = regexp.MustCompile(TestEmailRegexPattern)
