package discovery

import (
	"fmt"

	"github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

// Config describes how the service registers itself. An empty Address
// disables registration.
type Config struct {
	Address        string
	ServiceName    string
	ServiceAddress string
	Port           int
}

// Register registers the service with a Consul agent, with an HTTP health
// check against /health, and returns a function that deregisters it.
func Register(cfg Config, log *zap.Logger) (func(), error) {
	if cfg.Address == "" {
		return func() {}, nil
	}

	consulCfg := api.DefaultConfig()
	consulCfg.Address = cfg.Address
	client, err := api.NewClient(consulCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	serviceID := fmt.Sprintf("%s-%d", cfg.ServiceName, cfg.Port)
	registration := &api.AgentServiceRegistration{
		ID:      serviceID,
		Name:    cfg.ServiceName,
		Port:    cfg.Port,
		Address: cfg.ServiceAddress,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", cfg.ServiceAddress, cfg.Port),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}
	if err := client.Agent().ServiceRegister(registration); err != nil {
		return nil, fmt.Errorf("failed to register with consul: %w", err)
	}
	log.Info("registered with consul", zap.String("service_id", serviceID))

	return func() {
		if err := client.Agent().ServiceDeregister(serviceID); err != nil {
			log.Warn("failed to deregister from consul", zap.Error(err))
		}
	}, nil
}
