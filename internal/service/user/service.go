package user

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"equb_server/internal/dao/mysql/repository"
	"equb_server/internal/dto/request"
	"equb_server/internal/dto/respond"
	"equb_server/internal/model"
	"equb_server/pkg/errorx"
	"equb_server/pkg/util/random"
)

// tokenIssuer 签发双 Token，由 auth.Service 实现
type tokenIssuer interface {
	IssueTokens(ctx context.Context, userID string) (string, string, error)
}

// userInfoService 用户业务逻辑实现
type userInfoService struct {
	repos  *repository.Repositories
	tokens tokenIssuer
}

// NewUserService 构造函数，注入所有依赖
func NewUserService(repos *repository.Repositories, tokens tokenIssuer) *userInfoService {
	return &userInfoService{repos: repos, tokens: tokens}
}

func toUserRespond(user *model.UserInfo) respond.UserRespond {
	return respond.UserRespond{
		Id:            user.Uuid,
		Name:          user.Name,
		Email:         user.Email,
		AccountName:   user.AccountName,
		AccountNumber: user.AccountNumber,
		BankCode:      user.BankCode,
	}
}

// Register 注册并直接登录
func (u *userInfoService) Register(ctx context.Context, req request.RegisterRequest) (*respond.LoginRespond, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := u.repos.User.FindByEmail(ctx, email); err == nil {
		return nil, errorx.New(errorx.CodeUserExist, "该邮箱已注册")
	} else if !errorx.IsNotFound(err) {
		zap.L().Error("查询邮箱失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	user := &model.UserInfo{
		Uuid:        random.NewUuid('U'),
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		RawPassword: req.Password,
	}
	if err := u.repos.User.Create(ctx, user); err != nil {
		if errorx.HasCode(err, errorx.CodeConflict) {
			return nil, errorx.New(errorx.CodeUserExist, "该邮箱已注册")
		}
		zap.L().Error("创建用户失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	zap.L().Info("用户注册成功", zap.String("user_id", user.Uuid))

	return u.login(ctx, user)
}

// Login 邮箱密码登录
// 邮箱不存在与密码错误返回同一提示，避免枚举账号
func (u *userInfoService) Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error) {
	user, err := u.repos.User.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeInvalidPassword, "邮箱或密码错误")
		}
		zap.L().Error("查询用户失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if !user.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeInvalidPassword, "邮箱或密码错误")
	}
	return u.login(ctx, user)
}

func (u *userInfoService) login(ctx context.Context, user *model.UserInfo) (*respond.LoginRespond, error) {
	accessToken, refreshToken, err := u.tokens.IssueTokens(ctx, user.Uuid)
	if err != nil {
		return nil, err
	}
	return &respond.LoginRespond{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         toUserRespond(user),
	}, nil
}

// GetUserInfo 获取当前用户资料
func (u *userInfoService) GetUserInfo(ctx context.Context, userId string) (*respond.UserRespond, error) {
	user, err := u.repos.User.FindByUuid(ctx, userId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		zap.L().Error("查询用户失败", zap.String("user_id", userId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	rsp := toUserRespond(user)
	return &rsp, nil
}

// UpdateAccount 设置放款收款账户
func (u *userInfoService) UpdateAccount(ctx context.Context, userId string, req request.UpdateAccountRequest) error {
	if _, err := u.repos.User.FindByUuid(ctx, userId); err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		zap.L().Error("查询用户失败", zap.String("user_id", userId), zap.Error(err))
		return errorx.ErrServerBusy
	}

	err := u.repos.User.UpdateAccount(ctx, userId,
		strings.TrimSpace(req.AccountName),
		strings.TrimSpace(req.AccountNumber),
		strings.TrimSpace(req.BankCode))
	if err != nil {
		zap.L().Error("更新收款账户失败", zap.String("user_id", userId), zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}
