// Package logger expone un logger zap único con scoping por request.
//
// Init() se llama una vez desde main; los middlewares inyectan un logger con
// request_id/method/path en el contexto y los services lo recuperan con From(ctx).
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
//	defer logger.Sync()
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Authenticate"))
//	log.Debug("login rejected", logger.Reason("password_mismatch"))
//
// Nunca se loguean passwords, hashes ni tokens de sesión.
package logger
