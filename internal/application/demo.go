package application

import "github.com/ericfisherdev/pinvault/internal/domain/model"

// DemoRecords returns the sample credentials loaded into an empty vault.
func DemoRecords() []model.RecordInput {
	return []model.RecordInput{
		{SiteName: "Google", Username: "user_123", Password: "password123", URL: "https://google.com", Memo: "Google account", Keyword: "search, email, docs"},
		{SiteName: "Apple", Username: "appleid_user", Password: "password456", URL: "https://apple.com", Memo: "Apple ID", Keyword: "iphone, icloud, app store"},
		{SiteName: "Amazon", Username: "amazon_shopper", Password: "password789", URL: "https://amazon.com", Memo: "Amazon account", Keyword: "shopping, overseas orders, e-commerce"},
		{SiteName: "Facebook", Username: "fb_user", Password: "password101", URL: "https://facebook.com", Memo: "Facebook login", Keyword: "social, sns, community"},
		{SiteName: "Naver", Username: "naver_id", Password: "password112", URL: "https://naver.com", Memo: "Naver account", Keyword: "search, portal, blog"},
		{SiteName: "Netflix", Username: "netflix_fan", Password: "password134", URL: "https://netflix.com", Memo: "Netflix login", Keyword: "movies, series, streaming"},
	}
}
