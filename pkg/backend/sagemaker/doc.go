// Package sagemaker implements backend.Invoker against a SageMaker
// runtime endpoint. Sync calls use InvokeEndpoint; streaming calls use
// InvokeEndpointWithResponseStream and feed the payload parts through the
// eventstream decoder. Request signing and credentials are handled by the
// AWS SDK's default chain.
package sagemaker
