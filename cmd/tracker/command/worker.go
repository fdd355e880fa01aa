package command

import (
	"fmt"
	"time"

	service "github.com/pixil98/go-service"

	"github.com/quickroll/initiative/internal/account"
	"github.com/quickroll/initiative/internal/catalog"
	"github.com/quickroll/initiative/internal/server"
	"github.com/quickroll/initiative/internal/session"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	broker, err := cfg.Nats.BuildBroker()
	if err != nil {
		return nil, fmt.Errorf("creating message broker: %w", err)
	}

	accountFiles, err := cfg.Storage.BuildAccountStore()
	if err != nil {
		return nil, fmt.Errorf("creating account store: %w", err)
	}
	templateFiles, err := cfg.Storage.BuildTemplateStore()
	if err != nil {
		return nil, fmt.Errorf("creating template store: %w", err)
	}

	accounts := account.NewStore(accountFiles)
	templates := catalog.NewProvider(templateFiles, accounts)
	bridge := session.NewBridge(accounts)

	var registryOpts []session.RegistryOpt
	if cfg.HeartbeatInterval != "" {
		d, err := time.ParseDuration(cfg.HeartbeatInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing heartbeat_interval: %w", err)
		}
		registryOpts = append(registryOpts, session.WithHeartbeat(d))
	}
	registry := session.NewRegistry(broker, bridge, registryOpts...)

	srv := server.New(cfg.ListenAddr, registry, bridge, accounts, templates)

	return service.WorkerList{
		"broker":   broker,
		"bridge":   bridge,
		"registry": registry,
		"server":   srv,
	}, nil
}
