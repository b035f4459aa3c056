package auth

import (
	"golang.org/x/oauth2"
)

var Scopes = []string{
	"offline",
	"read:profile",
	"read:recovery",
	"read:sleep",
	"read:workout",
	"read:cycles",
}

type OAuthParams struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
}

func NewOAuthConfig(params OAuthParams) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     params.ClientID,
		ClientSecret: params.ClientSecret,
		RedirectURL:  params.RedirectURI,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  params.AuthURL,
			TokenURL: params.TokenURL,
			// whoop expects client credentials in the form body
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}
