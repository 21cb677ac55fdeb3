package controllers

import (
	"soundtrace/config"
	"soundtrace/internal/database"
	"soundtrace/internal/repositories"
	"soundtrace/internal/services"

	scrobbleController "soundtrace/internal/controllers/scrobbles"
)

type Controllers struct {
	Scrobble scrobbleController.ScrobbleControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	config config.Config,
	db database.DB,
) Controllers {
	return Controllers{
		Scrobble: scrobbleController.New(repos, services, config, db),
	}
}
