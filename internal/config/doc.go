// Package config loads the worker configuration.
//
// Configuration is layered: built-in defaults, then an optional YAML file,
// then environment variables. The queue connection honours the QUEUE_HOST,
// QUEUE_PORT, QUEUE_NAME, QUEUE_USERNAME, QUEUE_PASSWORD and QUEUE_VHOST
// variables; KUBECONFIG, APPDEPLOYER_LISTEN_ADDR and APPDEPLOYER_LOG_LEVEL
// are honoured as well. Command-line flags are applied by the caller
// before Validate.
//
// Example config.yaml:
//
//	transport:
//	  kind: amqp
//	  host: rabbitmq.messaging.svc
//	  queue: app-deployment
//	  durable: false
//	kubernetes:
//	  fieldManager: appdeployer
//	reconciler:
//	  workers: 4
//	  stepTimeout: 30s
//	  retry:
//	    steps: 4
//	    initialInterval: 200ms
//	    factor: 2
//	    jitter: 0.1
//	  recordEvents: true
//	  terminatingTimeout: 5m
//	manifest:
//	  registry: localhost:5000/webapplication
//	  ingressHost: k8s-app.local
//	  ingressClass: nginx
//	server:
//	  listenAddress: ":8080"
//	logging:
//	  level: info
//	  format: json
package config
