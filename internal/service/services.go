package service

import (
	"github.com/nedu/taskhub/internal/config"
	"github.com/nedu/taskhub/internal/repository"
)

type Services struct {
	Auth       *AuthService
	Password   *PasswordService
	Privilege  *PrivilegeService
	Task       *TaskService
	User       *UserService
	Connection *ConnectionService
}

func NewServices(repos *repository.Repositories, txm repository.TxManager, cfg *config.Config) *Services {
	auth := NewAuthService(repos, txm, cfg)
	return &Services{
		Auth:       auth,
		Password:   NewPasswordService(repos, txm, auth, cfg),
		Privilege:  NewPrivilegeService(repos.Privilege, repos.User),
		Task:       NewTaskService(repos.Task, repos.User),
		User:       NewUserService(repos, txm),
		Connection: NewConnectionService(repos.Connection, auth),
	}
}
