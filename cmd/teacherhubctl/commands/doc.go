// Package commands defines the teacherhubctl operator CLI.
//
// Commands
//
//   - lookup      Resolve a pincode through the postal directory
//   - categories  Print class categories and their subjects
//   - search      Run the admin teacher search
//   - export      Export recruiters or interviews as CSV, PDF or a data URI
//   - wizard      Walk through a teacher enquiry interactively
//
// # Implementation
//
// The root command loads the gateway configuration and builds the same
// services the HTTP server uses before any subcommand runs. Admin commands
// take the token from --token or prompt for it without echo.
package commands
