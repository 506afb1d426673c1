package odata

import (
	"context"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/config"
)

// NewTokenSource 使用 client credentials 向 Azure AD 申请 Bearer token
//
// 返回的 TokenSource 会缓存 token，过期前自动重新申请，不会返回已过期的 token。
func NewTokenSource(aad config.AADConfig, httpClient *http.Client) oauth2.TokenSource {
	cc := &clientcredentials.Config{
		ClientID:     aad.ClientID,
		ClientSecret: aad.ClientSecret,
		TokenURL:     aad.TokenURL(),
		// AAD v1 endpoint 使用 resource 而不是 scope
		EndpointParams: url.Values{"resource": {aad.Resource}},
		AuthStyle:      oauth2.AuthStyleInParams,
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	return cc.TokenSource(ctx)
}
