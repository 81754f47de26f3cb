// Package model 定义数据库实体模型
// 本文件定义用户信息模型，包含基本资料、登录凭证和放款收款账户
package model

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserInfo 用户信息模型
// 对应数据库 user_info 表
type UserInfo struct {
	gorm.Model

	// Uuid 用户唯一标识，格式：U + 日期 + 随机串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:用户唯一id"`

	Name  string `gorm:"column:name;type:varchar(50);not null;comment:姓名"`
	Email string `gorm:"column:email;uniqueIndex;type:varchar(255);not null;comment:邮箱"`

	// Password bcrypt 哈希，不存储明文
	Password string `gorm:"column:password;type:varchar(100);not null;comment:密码"`

	// 放款收款账户，银行卡号或 Telebirr 手机号
	AccountName   string `gorm:"column:account_name;type:varchar(100);comment:收款户名"`
	AccountNumber string `gorm:"column:account_number;type:varchar(50);comment:收款账号"`
	BankCode      string `gorm:"column:bank_code;type:varchar(20);comment:银行代码"`

	// RawPassword 明文密码（不入库），在 BeforeSave 中加密
	RawPassword string `gorm:"-" json:"-"`
}

// TableName 指定表名
func (UserInfo) TableName() string {
	return "user_info"
}

// BeforeSave 将 RawPassword 加密后写入 Password
func (u *UserInfo) BeforeSave(tx *gorm.DB) (err error) {
	if u.RawPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.RawPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hash)
		u.RawPassword = ""
	}
	return nil
}

// CheckPassword 校验登录密码
func (u *UserInfo) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext)) == nil
}

// PayoutAccountName 放款时使用的户名，未设置时回退到姓名
func (u *UserInfo) PayoutAccountName() string {
	if u.AccountName != "" {
		return u.AccountName
	}
	return u.Name
}
