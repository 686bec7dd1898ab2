// Command lambda runs the gateway as an AWS Lambda function behind an API
// Gateway proxy integration.
//
// Configuration comes entirely from the function environment:
//
//	SAGEMAKER_ENDPOINT_NAME - SageMaker endpoint to invoke (also the model ID)
//	AWS_REGION              - set by the Lambda runtime
//
// The proxy integration buffers responses, so stream-requested completions
// are served synchronously.
package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/backend/sagemaker"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/config"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/gateway"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/observability"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/transport"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("configuration failed", "error", err)
		os.Exit(1)
	}

	invoker := observability.InstrumentInvoker(sagemaker.New(sagemaker.Config{
		EndpointName: cfg.Backend.Endpoint,
		Region:       cfg.Backend.Region,
	}))

	gw := gateway.New(invoker, cfg.Backend.Endpoint)
	handler := transport.NewLambdaHandler(gw,
		transport.Recovery(),
		transport.RequestID(),
		transport.Logging(slog.Default()),
		observability.Metrics(),
	)

	slog.Info("lambda handler starting",
		"endpoint", cfg.Backend.Endpoint,
		"region", cfg.Backend.Region)
	lambda.Start(handler.Handle)
}
