// Package submit uploads a workspace project to the lab job API.
//
// The project is packed into a gzipped tar that honors the checkout's
// ignore files, checked against the upload size cap and sent with the
// user's credentials. The API reply decides the outcome: a queued job id
// on success, a dedicated hint when the job limit is reached, and the
// server's reason otherwise.
package submit
