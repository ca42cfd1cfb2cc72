package bootstrap

import "github.com/viant/evalrt/model"

// RuntimeName identifies the Azure Batch runtime
const RuntimeName = "azurebatch"

// Runtime configuration keys
const (
	KeyBatchAccountName     = "azure.batch.account.name"
	KeyBatchAccountKey      = "azure.batch.account.key"
	KeyBatchAccountURI      = "azure.batch.account.uri"
	KeyBatchPoolID          = "azure.batch.pool.id"
	KeyStorageAccountName   = "azure.storage.account.name"
	KeyStorageAccountKey    = "azure.storage.account.key"
	KeyStorageContainerName = "azure.storage.container.name"
	KeyRuntimeName          = "runtime.name"
	KeyRuntimePlatform      = "runtime.platform"
)

// NewRuntimeConfig binds parameters to runtime configuration keys
func NewRuntimeConfig(params *Parameters) model.Configuration {
	return model.Configuration{}.
		Set(KeyBatchAccountName, params.AzureBatchAccountName).
		Set(KeyBatchAccountKey, params.AzureBatchAccountKey).
		Set(KeyBatchAccountURI, params.AzureBatchAccountUri).
		Set(KeyBatchPoolID, params.AzureBatchPoolId).
		Set(KeyStorageAccountName, params.AzureStorageAccountName).
		Set(KeyStorageAccountKey, params.AzureStorageAccountKey).
		Set(KeyStorageContainerName, params.AzureStorageContainerName).
		Set(KeyRuntimeName, RuntimeName).
		Set(KeyRuntimePlatform, string(params.Platform()))
}
