package errors

import (
	"fmt"
	"net/http"
)

// 快捷方式与分组

// ErrShortcutNotFound 创建快捷方式未找到错误
func ErrShortcutNotFound(id string) *AppError {
	return New(ErrTypeNotFound, fmt.Sprintf("shortcut not found: %s", id), nil, http.StatusNotFound).WithStack()
}

// ErrGroupNotFound 创建分组未找到错误
func ErrGroupNotFound(id string) *AppError {
	return New(ErrTypeNotFound, fmt.Sprintf("group not found: %s", id), nil, http.StatusNotFound).WithStack()
}

// ErrDefaultGroupProtected 默认分组不可删除
var ErrDefaultGroupProtected = New(ErrTypeValidation, "the default group cannot be deleted", nil, http.StatusBadRequest)

// InvalidOrder 创建重新排序参数无效错误
func InvalidOrder(scope string, reason string) *AppError {
	return New(ErrTypeValidation, fmt.Sprintf("invalid order for %s: %s", scope, reason), nil, http.StatusBadRequest).WithStack()
}

// 存储

// StorageLoadFailed 创建数据加载失败错误
func StorageLoadFailed(cause error) *AppError {
	return New(ErrTypeStorage, "failed to load app data", cause, http.StatusInternalServerError).WithStack()
}

// StorageSaveFailed 创建数据保存失败错误
func StorageSaveFailed(collection string, cause error) *AppError {
	return New(ErrTypeStorage, fmt.Sprintf("failed to save %s", collection), cause, http.StatusInternalServerError).WithStack()
}

// 执行

// ExecutionFailed 创建快捷方式执行失败错误
func ExecutionFailed(name string, cause error) *AppError {
	return New(ErrTypeExecution, fmt.Sprintf("failed to execute shortcut %q", name), cause, http.StatusUnprocessableEntity).WithStack()
}

// ActionFailed 创建单个动作执行失败错误
func ActionFailed(index int, kind string, cause error) *AppError {
	return New(ErrTypeExecution, fmt.Sprintf("action #%d (%s) failed", index+1, kind), cause, http.StatusUnprocessableEntity).WithStack()
}

// ProcessNotFound 创建进程未找到错误
func ProcessNotFound(name string) *AppError {
	return New(ErrTypeNotFound, fmt.Sprintf("process not found: %s", name), nil, http.StatusNotFound).WithStack()
}

// UnsupportedAction 创建未知动作类型错误
func UnsupportedAction(kind string) *AppError {
	return New(ErrTypeValidation, fmt.Sprintf("unsupported action type: %s", kind), nil, http.StatusBadRequest).WithStack()
}

// 更新

var (
	ErrNoUpdateAvailable = New(ErrTypeUpdate, "No update available", nil, http.StatusConflict)
	ErrUpdateInProgress  = New(ErrTypeUpdate, "an update is being downloaded or installed", nil, http.StatusConflict)
	ErrNoReleaseChannel  = New(ErrTypeUpdate, "Could not fetch a valid release JSON from the remote", nil, http.StatusNotFound)
)

// UpdateCheckFailed 创建检查更新失败错误
func UpdateCheckFailed(cause error) *AppError {
	return New(ErrTypeUpdate, "failed to check for updates", cause, http.StatusBadGateway).WithStack()
}

// UpdateDownloadFailed 创建下载更新失败错误
func UpdateDownloadFailed(cause error) *AppError {
	return New(ErrTypeUpdate, "failed to download update", cause, http.StatusBadGateway).WithStack()
}

// UpdateInstallFailed 创建安装更新失败错误
func UpdateInstallFailed(cause error) *AppError {
	return New(ErrTypeUpdate, "failed to install update", cause, http.StatusInternalServerError).WithStack()
}

// 平台

// PlatformUnsupported 创建不支持的平台错误
func PlatformUnsupported(operation, platform string) *AppError {
	return New(ErrTypeUnsupported, fmt.Sprintf("%s is not supported on %s", operation, platform), nil, http.StatusNotImplemented).WithStack()
}

// 配置

// ConfigInvalid 创建配置无效错误
func ConfigInvalid(field string, cause error) *AppError {
	return New(ErrTypeConfig, fmt.Sprintf("invalid configuration: %s", field), cause, http.StatusInternalServerError).WithStack()
}

// 文件系统

// FileNotFound 创建文件未找到错误
func FileNotFound(path string) *AppError {
	return New(ErrTypeNotFound, fmt.Sprintf("file not found: %s", path), nil, http.StatusNotFound).WithStack()
}

// FileReadFailed 创建文件读取失败错误
func FileReadFailed(path string, cause error) *AppError {
	return New(ErrTypeInternal, fmt.Sprintf("failed to read file: %s", path), cause, http.StatusInternalServerError).WithStack()
}

// FileWriteFailed 创建文件写入失败错误
func FileWriteFailed(path string, cause error) *AppError {
	return New(ErrTypeInternal, fmt.Sprintf("failed to write file: %s", path), cause, http.StatusInternalServerError).WithStack()
}

// 参数

// RequiredParam 创建必需参数缺失错误
func RequiredParam(param string) *AppError {
	return New(ErrTypeInvalidArg, fmt.Sprintf("required parameter missing: %s", param), nil, http.StatusBadRequest).WithStack()
}

// InvalidParam 创建参数无效错误
func InvalidParam(param string, reason string) *AppError {
	message := fmt.Sprintf("invalid parameter: %s", param)
	if reason != "" {
		message = fmt.Sprintf("%s (%s)", message, reason)
	}
	return New(ErrTypeInvalidArg, message, nil, http.StatusBadRequest).WithStack()
}

// HTTPShutDown 创建HTTP服务关闭失败错误
func HTTPShutDown(cause error) *AppError {
	return New(ErrTypeHTTP, "http server shut down", cause, http.StatusInternalServerError).WithStack()
}
