package respond

// UserRespond 用户基本资料
type UserRespond struct {
	Id            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	AccountName   string `json:"accountName,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	BankCode      string `json:"bankCode,omitempty"`
}

// LoginRespond 登录/注册响应
type LoginRespond struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         UserRespond `json:"user"`
}
